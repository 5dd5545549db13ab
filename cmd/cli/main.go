package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/RuheSaniya/code-alpha-tasks/internal/commander"
	"github.com/RuheSaniya/code-alpha-tasks/internal/persistence"
)

var (
	name    = "cli"
	version = "1.0.0"
)

type args struct {
	Store  string `help:"bundle store directory" arg:"--store,env:MLPIPE_STORE"`
	NoWait bool   `help:"exit without waiting for background jobs" arg:"--no-wait"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf("%s is an interactive shell for training, storing and using pipelines", name)
}

func main() {
	a := args{Store: "models"}
	arg.MustParse(&a)

	cmd := commander.NewCommander(persistence.NewStore(a.Store), os.Stdout)
	cmd.Start(os.Stdin)
	if !a.NoWait {
		cmd.Wait()
	}
}
