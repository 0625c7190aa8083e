package cmd

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/flynn-archive/go-shlex"
	internalclient "github.com/rtbo/scull/cmd/scull-cli/internal/client"
	"github.com/rtbo/scull/cmd/scull-cli/internal/common"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/spf13/cobra"
)

const consoleHelp = `Commands:
  open <device> [mode]    open a session (mode: rw, ro, wo; default rw)
  read <count>            read from the session cursor
  write <data>            write at the session cursor
  seek <offset> [whence]  move the cursor (whence: set, cur, end)
  status                  show the state of the session device
  trim                    free all data of the session device
  close                   release the session
  help                    print this help
  exit                    leave the console`

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console over a device session",
	Long: `Interactive console keeping one open device session, the way a process
keeps an open descriptor: reads and writes share a cursor, a write-only
open truncates, releasing drops the cursor but not the data.`,
	Args: cobra.NoArgs,
	Run:  runConsole,
}

var errNoSession = errors.New("no open session, use 'open <device>' first")

type console struct {
	cmd *cobra.Command
	cli *internalclient.Client

	rl *readline.Instance

	token string
	dev   int
}

func runConsole(cmd *cobra.Command, _ []string) {
	cli, err := internalclient.GetClientByFlag(commonflags.Endpoint)
	common.ExitOnErr(cmd, "", err)

	rl, err := readline.New("scull> ")
	common.ExitOnErr(cmd, "can't init console: %w", err)

	defer rl.Close()

	c := &console{
		cmd: cmd,
		cli: cli,
		rl:  rl,
	}

	defer c.releaseSession()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}

			continue
		} else if err == io.EOF {
			break
		}

		words, err := shlex.Split(line)
		if err != nil {
			cmd.PrintErrf("can't parse line: %v\n", err)
			continue
		}

		if len(words) == 0 {
			continue
		}

		if words[0] == "exit" || words[0] == "quit" {
			break
		}

		c.dispatch(words)
	}
}

func (c *console) dispatch(words []string) {
	var err error

	switch words[0] {
	case "help":
		c.cmd.Println(consoleHelp)
	case "open":
		err = c.open(words[1:])
	case "read":
		err = c.read(words[1:])
	case "write":
		err = c.write(words[1:])
	case "seek":
		err = c.seek(words[1:])
	case "status":
		err = c.status()
	case "trim":
		err = c.trim()
	case "close":
		err = c.releaseSession()
	default:
		err = fmt.Errorf("unknown command %q, try 'help'", words[0])
	}

	if err != nil {
		c.cmd.PrintErrln(err)
	}
}

func (c *console) open(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: open <device> [mode]")
	}

	dev, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid device index: %w", err)
	}

	var mode string
	if len(args) == 2 {
		mode = args[1]
	}

	if c.token != "" {
		if err := c.releaseSession(); err != nil {
			return err
		}
	}

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.OpenSessionPrm
	prm.SetClient(c.cli)
	prm.SetDevice(dev)
	prm.SetMode(mode)

	res, err := internalclient.OpenSession(ctx, prm)
	if err != nil {
		return err
	}

	c.token = res.Token()
	c.dev = dev
	c.rl.SetPrompt(fmt.Sprintf("scull:%d> ", dev))

	c.cmd.Printf("session %s\n", c.token)

	return nil
}

func (c *console) read(args []string) error {
	if c.token == "" {
		return errNoSession
	}

	if len(args) != 1 {
		return errors.New("usage: read <count>")
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid count: %w", err)
	}

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.SessionReadPrm
	prm.SetClient(c.cli)
	prm.SetToken(c.token)
	prm.SetCount(count)

	res, err := internalclient.SessionRead(ctx, prm)
	if err != nil {
		return err
	}

	if len(res.Data()) == 0 {
		c.cmd.Println("no data (end of data or hole), cursor unchanged")
		return nil
	}

	c.cmd.Printf("%d bytes, cursor at %d\n", len(res.Data()), res.Offset())
	c.cmd.Print(hex.Dump(res.Data()))

	return nil
}

func (c *console) write(args []string) error {
	if c.token == "" {
		return errNoSession
	}

	if len(args) == 0 {
		return errors.New("usage: write <data>")
	}

	data := strings.Join(args, " ")

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.SessionWritePrm
	prm.SetClient(c.cli)
	prm.SetToken(c.token)
	prm.SetPayloadReader(bytes.NewReader([]byte(data)))

	res, err := internalclient.SessionWrite(ctx, prm)
	if err != nil {
		return err
	}

	c.cmd.Printf("written %d bytes, cursor at %d\n", res.Written(), res.Offset())

	return nil
}

func (c *console) seek(args []string) error {
	if c.token == "" {
		return errNoSession
	}

	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: seek <offset> [whence]")
	}

	off, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid offset: %w", err)
	}

	var whence string
	if len(args) == 2 {
		whence = args[1]
	}

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.SessionSeekPrm
	prm.SetClient(c.cli)
	prm.SetToken(c.token)
	prm.SetOffset(off)
	prm.SetWhence(whence)

	res, err := internalclient.SessionSeek(ctx, prm)
	if err != nil {
		return err
	}

	c.cmd.Printf("cursor at %d\n", res.Offset())

	return nil
}

func (c *console) status() error {
	if c.token == "" {
		return errNoSession
	}

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.GetDevicePrm
	prm.SetClient(c.cli)
	prm.SetDevice(c.dev)

	res, err := internalclient.GetDevice(ctx, prm)
	if err != nil {
		return err
	}

	info := res.Info()

	c.cmd.Printf("device %d: size %d, quantum %d, qset %d, %d segments\n",
		info.ID, info.Size, info.Quantum, info.QSet, len(info.Segments))

	return nil
}

func (c *console) trim() error {
	if c.token == "" {
		return errNoSession
	}

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.TrimDevicePrm
	prm.SetClient(c.cli)
	prm.SetDevice(c.dev)

	if _, err := internalclient.TrimDevice(ctx, prm); err != nil {
		return err
	}

	c.cmd.Printf("device %d trimmed\n", c.dev)

	return nil
}

func (c *console) releaseSession() error {
	if c.token == "" {
		return nil
	}

	ctx, cancel := commonflags.GetCommandContext(c.cmd)
	defer cancel()

	var prm internalclient.ReleaseSessionPrm
	prm.SetClient(c.cli)
	prm.SetToken(c.token)

	_, err := internalclient.ReleaseSession(ctx, prm)

	c.token = ""
	c.rl.SetPrompt("scull> ")

	return err
}
