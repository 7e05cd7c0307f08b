package cil

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// arMagic is the fixed 8-byte signature that opens every Unix ar archive.
const arMagic = "!<arch>\n"

const arHeaderLen = 60

// ReadArchive reads a Unix `ar` archive (the format a .rlib is) from r and
// returns the Join of every member whose identifier contains ".bc",
// decoded with Decode. This is a hand-rolled minimal reader: spec.md marks
// archive reading as an out-of-scope external collaborator, and no
// example repo in the pack vendors an archive-format library, so there is
// nothing to wire here (DESIGN.md). Grounded on
// original_source/src/bin/linker.rs::load_ar for which members to select
// and how to fold them together.
func ReadArchive(r io.Reader) (*Assembly, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("cil: reading archive magic: %w", err)
	}
	if string(magic) != arMagic {
		return nil, fmt.Errorf("cil: not a Unix ar archive (bad magic)")
	}

	var out *Assembly
	for {
		header := make([]byte, arHeaderLen)
		n, err := io.ReadFull(br, header)
		if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cil: reading archive member header: %w", err)
		}
		name := strings.TrimRight(string(header[0:16]), " ")
		sizeField := strings.TrimSpace(string(header[48:58]))
		size, err := strconv.ParseInt(sizeField, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cil: reading archive member %q size: %w", name, err)
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, fmt.Errorf("cil: reading archive member %q body: %w", name, err)
		}
		if size%2 == 1 {
			// Members are padded to an even offset with a trailing '\n'.
			if _, err := br.Discard(1); err != nil {
				return nil, fmt.Errorf("cil: discarding archive padding after %q: %w", name, err)
			}
		}

		if !strings.Contains(name, ".bc") {
			continue
		}
		member, err := Decode(body)
		if err != nil {
			return nil, fmt.Errorf("cil: decoding archive member %q: %w", name, err)
		}
		if out == nil {
			out = member
			continue
		}
		out, err = Join(out, member)
		if err != nil {
			return nil, fmt.Errorf("cil: joining archive member %q: %w", name, err)
		}
	}
	if out == nil {
		out = NewAssembly("")
	}
	return out, nil
}
