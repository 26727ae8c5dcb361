package shell

import (
	_ "embed"
)

//go:embed helptext.txt
var helpText string

func usage() (*Response, error) {
	return msg(helpText), nil
}
