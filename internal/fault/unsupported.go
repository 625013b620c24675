package fault

import "fmt"

// Unsupported enumerates LLVM features that are deliberately outside the
// accepted subset. Hitting one is not a bug: it is a typed refusal.
type Unsupported uint8

const (
	UnsupportedModuleLevelAssembly Unsupported = iota
	UnsupportedInlineAssembly
	UnsupportedGlobalAlias
	UnsupportedGlobalMarker
	UnsupportedFloatingPoint
	UnsupportedFloatingPointOrdering
	UnsupportedVectorization
	UnsupportedVectorOfPointers
	UnsupportedScalableVector
	UnsupportedVectorBitcast
	UnsupportedVariadicArguments
	UnsupportedArchSpecificExtension
	UnsupportedTypedPointer
	UnsupportedThreadLocalStorage
	UnsupportedWeakGlobalVariable
	UnsupportedWeakFunction
	UnsupportedExternGlobalVariable
	UnsupportedExternFunction
	UnsupportedPointerAddressSpace
	UnsupportedOutOfBoundConstantGEP
	UnsupportedConstantExpr
	UnsupportedInterfaceResolver
	UnsupportedAnonymousFunction
	UnsupportedIndirectJump
	UnsupportedIntrinsicsExperimentalGC
	UnsupportedIntrinsicsPreAllocated
	UnsupportedAtomicInstruction
	UnsupportedExceptionHandling
	UnsupportedMetadataSystem
)

// unsupportedNames is the display catalog. Kept as pure data so the catalog
// can be extended and tested independently of any control flow.
var unsupportedNames = map[Unsupported]string{
	UnsupportedModuleLevelAssembly:      "module-level assembly",
	UnsupportedInlineAssembly:           "inline assembly",
	UnsupportedGlobalAlias:              "global alias",
	UnsupportedGlobalMarker:             "markers for global values",
	UnsupportedFloatingPoint:            "floating point arithmetic",
	UnsupportedFloatingPointOrdering:    "floating point ordered comparison",
	UnsupportedVectorization:            "vectorization",
	UnsupportedVectorOfPointers:         "vector of pointers",
	UnsupportedScalableVector:           "scalable vector of non-fixed size",
	UnsupportedVectorBitcast:            "bitcast among vector and scalar",
	UnsupportedVariadicArguments:        "variadic arguments",
	UnsupportedArchSpecificExtension:    "architecture-specific extension",
	UnsupportedTypedPointer:             "typed pointer",
	UnsupportedThreadLocalStorage:       "thread-local storage",
	UnsupportedWeakGlobalVariable:       "weak definition for global variable",
	UnsupportedWeakFunction:             "weak definition for function",
	UnsupportedExternGlobalVariable:     "global variable externally initialized",
	UnsupportedExternFunction:           "function externally defined",
	UnsupportedPointerAddressSpace:      "address space of a pointer",
	UnsupportedOutOfBoundConstantGEP:    "intentional out-of-bound GEP on constant",
	UnsupportedConstantExpr:             "constant expression",
	UnsupportedInterfaceResolver:        "load-time interface resolving",
	UnsupportedAnonymousFunction:        "anonymous function",
	UnsupportedIndirectJump:             "indirect jump (e.g., through register)",
	UnsupportedIntrinsicsExperimentalGC: "llvm.experimental.gc.*",
	UnsupportedIntrinsicsPreAllocated:   "llvm.call.preallocated.*",
	UnsupportedAtomicInstruction:        "atomic instruction",
	UnsupportedExceptionHandling:        "exception handling",
	UnsupportedMetadataSystem:           "metadata system",
}

func (u Unsupported) String() string {
	if s, ok := unsupportedNames[u]; ok {
		return s
	}
	return fmt.Sprintf("Unsupported(%d)", u)
}
