package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/subosito/gotenv"
)

const usage = `erroranalytics is a tool for sending error reports to Error Analytics

Usage:

erroranalytics <command> --flag1 --flag2 (...)

The commands are:
	send -- Report a single runtime error, e.g. from a shell script or cron job.

For more details about a command, run:

erroranalytics <command> --help`

type application struct {
	sendCmd   *flag.FlagSet
	sendFlags *sendFlags

	stdout io.Writer
	stderr io.Writer
}

func main() {
	if err := run(os.Args[1:], getEnvVars(), os.Stdout, os.Stderr); err != nil {
		fmt.Printf("%s\n", err.Error())
		os.Exit(1)
	}
}

func run(args []string, envVars map[string]string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}
	sendCmd := flag.NewFlagSet("send", flag.ContinueOnError)
	sendCmd.SetOutput(stderr)
	app := application{
		sendCmd:   sendCmd,
		sendFlags: newSendFlags(sendCmd),
		stdout:    stdout,
		stderr:    stderr,
	}

	switch args[0] {
	case "send":
		if err := sendCmd.Parse(args[1:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return app.runSend(envVars)
	}
	return fmt.Errorf(usage)
}

func getEnvVars() map[string]string {
	return splitByEquals(os.Environ())
}

// loadEnvFile adds the variables in path to envVars. Variables that are
// already set take precedence.
func loadEnvFile(path string, envVars map[string]string) error {
	env, err := gotenv.Read(path)
	if err != nil {
		return fmt.Errorf("unable to read env file '%s': %w", path, err)
	}
	for k, v := range env {
		if _, ok := envVars[k]; !ok {
			envVars[k] = v
		}
	}
	return nil
}

func splitByEquals(strs []string) map[string]string {
	kvps := map[string]string{}
	for _, kvp := range strs {
		if pair := strings.SplitN(kvp, "=", 2); len(pair) == 2 {
			kvps[pair[0]] = pair[1]
		}
	}
	return kvps
}
