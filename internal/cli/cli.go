package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Run      *RunCommand
	Refilter *RefilterCommand
	Periods  *PeriodsCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "topictracker"
	parser.LongDescription = "Periodic collector that filters Hacker News and arXiv items against boolean interest queries."

	cmds := &commands{
		Run:      &RunCommand{globals: &globals, version: version},
		Refilter: &RefilterCommand{globals: &globals, version: version},
		Periods:  &PeriodsCommand{globals: &globals, version: version},
	}

	parser.AddCommand("run", "Execute one collection run", "Fetch, filter, and persist items from the requested sources.", cmds.Run)
	parser.AddCommand("refilter", "Re-classify a stored period", "Re-run admission and classification for one stored period against the current query set.", cmds.Refilter)
	parser.AddCommand("periods", "List stored collection periods", "List stored collection periods with total and matched item counts.", cmds.Periods)

	return parser, &globals, cmds
}

// Run is the main entry point for the TopicTracker CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("topictracker %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
