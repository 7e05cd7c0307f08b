package cil

// AddMandatoryStatics registers the three static fields every emitted
// assembly must carry regardless of what the source program references,
// since the runtime's startup shim reads them unconditionally. Grounded
// on original_source/src/bin/linker.rs::add_mandatory_statics (spec.md
// §4.8).
func AddMandatoryStatics(asm *Assembly) {
	asm.AddStatic(StaticDef{Name: "__rust_alloc_error_handler_should_panic", Type: U8})
	asm.AddStatic(StaticDef{Name: "__rust_no_alloc_shim_is_unstable", Type: U8})
	asm.AddStatic(StaticDef{Name: "environ", Type: Ptr(Ptr(U8))})
}
