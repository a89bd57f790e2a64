// abi-inspect decodes a hex encoded boundary buffer, raises its records to
// domain values and prints them.
//
//	abi-inspect --kind notes --count 2 --in 0x...
//	echo 0x... | abi-inspect --kind tx
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kysee/phoenix-abi/config"
	"github.com/kysee/phoenix-abi/utils"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		kind       string
		in         string
		count      int
		configPath string
		logLevel   string
	)
	flagSet := pflag.NewFlagSet("abi-inspect", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&kind, "kind", "k", "notes", "buffer kind: "+strings.Join(kindNames(), ", "))
	flagSet.StringVar(&in, "in", "", "0x-prefixed hex input (default: read from stdin)")
	flagSet.IntVarP(&count, "count", "n", -1, "number of records in the buffer (default: every slot)")
	flagSet.StringVar(&configPath, "config", "", "YAML config file")
	flagSet.StringVar(&logLevel, "log-level", "", "override the configured log level")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := utils.NewLogger(stderr, cfg.LogLevel)

	inspect, ok := kinds[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q, want one of %s", kind, strings.Join(kindNames(), ", "))
	}

	if in == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read stdin: %w", err)
		}
		in = line
	}
	buf, err := hexutil.Decode(strings.TrimSpace(in))
	if err != nil {
		return fmt.Errorf("decode hex input: %w", err)
	}
	log.Debug().Str("kind", kind).Int("bytes", len(buf)).Int("count", count).Msg("inspecting")

	return inspect(&inspection{
		w:     stdout,
		buf:   buf,
		count: count,
		cfg:   cfg,
	})
}
