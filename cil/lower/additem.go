package lower

import (
	"fmt"

	"github.com/mna/cilgen/cil"
	"github.com/mna/cilgen/cil/ir"
)

// AddItem is the upstream entry point a frontend calls once per
// monomorphic item it hands to the back-end: it accepts a function-kind
// item, lowers it and registers the resulting method on asm, and rejects
// every other item kind with ErrUnsupportedItem (spec.md §6: "for each
// monomorphic item the frontend hands in ... it invokes assembly.add_item,
// which must accept a function-kind item and reject other kinds with a
// clearly-typed 'unsupported item' error").
//
// This cannot be a literal (*cil.Assembly) method: cil must not import
// cil/ir (the lowering direction runs the other way, ir -> cil, to avoid
// an import cycle — see this package's doc comment), and Go does not let
// a method be declared on a type from outside its own package. Taking
// *cil.Assembly as the receiver-shaped first argument is the idiomatic
// substitute.
func AddItem(asm *cil.Assembly, item *ir.Item) error {
	if item.Kind != ir.ItemFunction {
		return fmt.Errorf("%w: %q is a %s item, not a function", cil.ErrUnsupportedItem, item.Name, item.Kind)
	}
	m, err := Item(item)
	if err != nil {
		return err
	}
	asm.AddMethod(m)
	return nil
}
