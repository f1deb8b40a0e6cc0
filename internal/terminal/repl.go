package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const helpText = `Commands:
  move <cell>       play cell 0..8, counted left to right from the top row
  click <row> <col> play at row 1..3 (bottom to top) and col 1..3
  jump <step>       go to a step of the move list
  sort              toggle the move list order
  new               start a new game
  show              draw the board again
  help              show this help
  quit              leave
`

var errUsage = errors.New("usage")

// REPL - reads commands line by line and redraws the board after each accepted change.
type REPL struct {
	logger *slog.Logger
	in     io.Reader
	out    io.Writer

	game        *tictactoe.Game
	unsubscribe func()
	renderErr   error
}

func NewREPL(logger *slog.Logger, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		logger: logger.With("component", "repl"),
		in:     in,
		out:    out,
	}
}

// Run - processes input until quit, end of input or ctx is canceled.
func (that *REPL) Run(ctx context.Context) error {
	that.startGame()
	// new replaces the game and its subscription
	defer func() { that.unsubscribe() }()

	if err := that.show(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(that.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		quit, err := that.execute(strings.Fields(scanner.Text()))
		if errors.Is(err, errUsage) {
			if _, err = fmt.Fprintf(that.out, "%v, type help for commands\n", err); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		if err != nil {
			return err
		}

		if that.renderErr != nil {
			return that.renderErr
		}

		if quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func (that *REPL) execute(fields []string) (bool, error) {
	log := that.logger.With("method", "execute")

	if len(fields) == 0 {
		return false, nil
	}

	var err error

	switch command := fields[0]; command {
	case "move":
		var cell int
		if cell, err = intArgs(fields, 1, "move <cell>"); err != nil {
			return false, err
		}

		var row, col int
		if row, col, err = entity.CellCoordinates(cell); err == nil {
			err = that.game.ApplyMove(cell, row, col)
		}
	case "click":
		if len(fields) != 3 {
			return false, fmt.Errorf("%w: click <row> <col>", errUsage)
		}

		var row, col, cell int
		if row, err = strconv.Atoi(fields[1]); err != nil {
			return false, fmt.Errorf("%w: click <row> <col>", errUsage)
		}
		if col, err = strconv.Atoi(fields[2]); err != nil {
			return false, fmt.Errorf("%w: click <row> <col>", errUsage)
		}

		if cell, err = entity.CellIndex(row, col); err == nil {
			err = that.game.ApplyMove(cell, row, col)
		}
	case "jump":
		var step int
		if step, err = intArgs(fields, 1, "jump <step>"); err != nil {
			return false, err
		}

		err = that.game.JumpTo(step)
	case "sort":
		that.game.ToggleSort()
	case "new":
		that.unsubscribe()
		that.startGame()
		return false, that.show()
	case "show":
		return false, that.show()
	case "help":
		if _, err = io.WriteString(that.out, helpText); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	// rejected moves and jumps leave the board as it is
	if err != nil {
		log.Debug("command ignored", "command", fields[0], "error", err)
	}

	return false, nil
}

func (that *REPL) startGame() {
	that.game = tictactoe.NewGame()
	that.unsubscribe = that.game.Subscribe(func(snapshot tictactoe.Snapshot) {
		if err := that.render(snapshot); err != nil && that.renderErr == nil {
			that.renderErr = err
		}
	})
}

func (that *REPL) show() error {
	return that.render(that.game.Snapshot())
}

func (that *REPL) render(snapshot tictactoe.Snapshot) error {
	if err := Render(that.out, snapshot); err != nil {
		return err
	}

	if _, err := io.WriteString(that.out, "\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func intArgs(fields []string, count int, usage string) (int, error) {
	if len(fields) != count+1 {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}

	value, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}

	return value, nil
}
