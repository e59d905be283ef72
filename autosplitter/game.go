package autosplitter

import (
	"gosplit/signature"
)

// ProcessNames are the executables tried, in order, when attaching
var ProcessNames = []string{"MugenEngine-Win64-Shipping.exe"}

// LoadingSignature is "mov [rbx+60h], eax; mov eax, [rip+disp32]", the read of the loading flag
var LoadingSignature = signature.MustParse("89 43 60 8B 05")

// DefaultResolver locates the loading flag through LoadingSignature
func DefaultResolver() Resolver {
	return RelativeSignatureResolver{
		Signature:          LoadingSignature,
		DisplacementOffset: int64(LoadingSignature.Len()),
	}
}
