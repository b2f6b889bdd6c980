// Package cliopts declares command-line flags that fall back to environment
// variables.
package cliopts

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Opts is one command's flag set. Flags take precedence over environment
// variables, which take precedence over the declared defaults.
type Opts struct {
	Args  []string
	Flags *pflag.FlagSet

	// Getenv looks up environment variables; defaults to os.Getenv.
	Getenv func(string) string

	registeredEnvs []string
}

// New creates an empty option set for args.
func New(name string, args []string) *Opts {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	return &Opts{
		Args:   args,
		Flags:  flags,
		Getenv: os.Getenv,
	}
}

// Parse parses Args. Positional arguments are available from Flags.Args.
func (o *Opts) Parse() error {
	return o.Flags.Parse(o.Args)
}

// Help lists the flags and the environment variables they read.
func (o *Opts) Help() string {
	b := &strings.Builder{}
	o.Flags.SetOutput(b)
	o.Flags.PrintDefaults()
	o.Flags.SetOutput(io.Discard)

	if len(o.registeredEnvs) > 0 {
		b.WriteString("\nYou may persistently set the following as environment variables (flags take precedence):\n")
		for _, e := range o.registeredEnvs {
			fmt.Fprintf(b, "- $%s\n", e)
		}
	}
	return b.String()
}

func (o *Opts) getEnv(k string) string {
	if k == "" {
		return ""
	}
	o.registeredEnvs = append(o.registeredEnvs, k)
	return o.Getenv(k)
}

func (o *Opts) Int(envKey, flag, shortFlag string, defaultVal int, usage string) (*int, error) {
	if env := o.getEnv(envKey); env != "" {
		v, err := strconv.Atoi(env)
		if err != nil {
			return nil, fmt.Errorf(`invalid environment variable %s. Expected int. Found %q.`, envKey, env)
		}
		defaultVal = v
	}
	return o.Flags.IntP(flag, shortFlag, defaultVal, usage), nil
}

func (o *Opts) String(envKey, flag, shortFlag string, defaultVal, usage string) *string {
	if env := o.getEnv(envKey); env != "" {
		defaultVal = env
	}
	return o.Flags.StringP(flag, shortFlag, defaultVal, usage)
}

// StringArray declares a repeatable flag. A set environment variable
// supplies whitespace separated values.
func (o *Opts) StringArray(envKey, flag, shortFlag string, usage string) *[]string {
	var defaultVal []string
	if env := o.getEnv(envKey); env != "" {
		defaultVal = strings.Fields(env)
	}
	return o.Flags.StringArrayP(flag, shortFlag, defaultVal, usage)
}

func (o *Opts) Bool(envKey, flag, shortFlag string, defaultVal bool, usage string) (*bool, error) {
	if env := o.getEnv(envKey); env != "" {
		switch env {
		case "1", "true":
			defaultVal = true
		case "0", "false":
			defaultVal = false
		default:
			return nil, fmt.Errorf(`invalid environment variable %s. Expected bool. Found %q.`, envKey, env)
		}
	}
	return o.Flags.BoolP(flag, shortFlag, defaultVal, usage), nil
}
