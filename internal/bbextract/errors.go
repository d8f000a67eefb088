package bbextract

import "fmt"

// UnexpectedControlTransferError signals that the PC jumped by more
// than 4 bytes without the preceding instruction being a control
// instruction — a trace from an unsupported ISA or a corrupted log.
type UnexpectedControlTransferError struct {
	FromPC       uint64
	FromMnemonic string
	ToPC         uint64
}

func (e *UnexpectedControlTransferError) Error() string {
	return fmt.Sprintf(
		"bbextract: control diverged from pc=0x%x (%s) to pc=0x%x, but the last instruction was not a control instruction",
		e.FromPC, e.FromMnemonic, e.ToPC,
	)
}

func unexpectedControlTransfer(fromPC uint64, fromMnemonic string, toPC uint64) error {
	return &UnexpectedControlTransferError{FromPC: fromPC, FromMnemonic: fromMnemonic, ToPC: toPC}
}
