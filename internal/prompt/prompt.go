// Package prompt asks the user for run options on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"arrow-trader/internal/config"
)

// Ask walks through the run options, writing questions to out and reading
// one answer line per question from in. An empty answer keeps the current
// value; an invalid one prints a notice and keeps it too.
func Ask(in io.Reader, out io.Writer, cfg *config.Config) error {
	p := &asker{r: bufio.NewReader(in), w: out}

	if a := p.ask("Restrict landing pad size to large: [Y/n]\t"); strings.EqualFold(a, "n") {
		cfg.LargeOnly = false
	} else if strings.EqualFold(a, "y") {
		cfg.LargeOnly = true
	}

	if a := p.ask("Include fleet carriers: [y/N]\t"); strings.EqualFold(a, "y") {
		cfg.IncludeFleetCarrier = true
	} else if strings.EqualFold(a, "n") {
		cfg.IncludeFleetCarrier = false
	}

	q := fmt.Sprintf("What is the maximum amount of cargo units you can hold: ( > 0) [%d]\t", cfg.MaxQuantity)
	if n, ok := p.askInt(q); ok {
		if n <= 0 {
			p.say("Input must be greater than zero. Using default value.")
		} else {
			cfg.MaxQuantity = n
		}
	}

	q = fmt.Sprintf("What is the maximum amount of seconds to wait per commodity: (0-%d) [%d]\t",
		config.MaxRequestWaitLimit, cfg.MaxRequestWait)
	if n, ok := p.askInt(q); ok {
		if n < 0 || n > config.MaxRequestWaitLimit {
			p.say("Number outside of allowed range. Using default value.")
		} else {
			cfg.MaxRequestWait = n
		}
	}

	q = fmt.Sprintf("Maximum number of results to display: ( >= 0) [%d]\t", cfg.NumResultsToDisplay)
	if n, ok := p.askInt(q); ok {
		if n < 0 {
			p.say("Number outside of allowed range. Using default value.")
		} else {
			cfg.NumResultsToDisplay = n
		}
	}

	if a := p.ask("Restrict to systems within 500 Ly of Sol? [Y/n]\t"); strings.EqualFold(a, "n") {
		cfg.NearSol = false
	} else if strings.EqualFold(a, "y") {
		cfg.NearSol = true
	}

	if a := p.ask("Create log file? Directory will be created if it does not exist: [Y/n]\t"); strings.EqualFold(a, "n") {
		cfg.LogFile = false
	} else if strings.EqualFold(a, "y") {
		cfg.LogFile = true
	}
	if cfg.LogFile {
		p.say(fmt.Sprintf("Saving log file to %s", cfg.LogDir))
	}

	return p.err
}

type asker struct {
	r   *bufio.Reader
	w   io.Writer
	err error
}

func (p *asker) say(line string) {
	fmt.Fprintln(p.w, line)
}

func (p *asker) ask(question string) string {
	fmt.Fprint(p.w, question)
	line, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF && p.err == nil {
		p.err = fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line)
}

func (p *asker) askInt(question string) (int, bool) {
	a := p.ask(question)
	if a == "" {
		return 0, false
	}
	n, err := strconv.Atoi(a)
	if err != nil {
		p.say("Error parsing input. Using default value.")
		return 0, false
	}
	return n, true
}
