package main

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
)

// terminalPresenter renders pairing challenges as scannable QR codes on
// the operator's terminal.
type terminalPresenter struct {
	out io.Writer
}

func (tp terminalPresenter) PresentChallenge(code string) {
	fmt.Fprintln(tp.out, "Scan the code below with WhatsApp on your phone (Linked devices):")
	qrterminal.GenerateHalfBlock(code, qrterminal.L, tp.out)
}
