/*
 * osimsim - Simulator configuration file parser.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package simconfig parses the simulator's configuration file: one
// `key value` pair per line, '#' starts a trailing comment, blank
// lines are skipped. The line scanner follows the same shape as the
// teacher's device configuration parser, simplified to a flat key/value
// vocabulary since this simulator has no device tree to describe.
package simconfig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/osimsim/internal/scheduler"
)

// Config is the parsed settings a `system.System` is constructed from.
type Config struct {
	MemorySize uint32
	PageSize   uint32
	PageLimit  int
	Strategy   scheduler.Strategy
	Quantum1   int
	Quantum2   int
	RNGSeed    int64
}

// Default returns the configuration used when no file is given: 1 MiB
// of physical memory, 256-byte pages, an 8-page resident limit per
// process, MLFQ scheduling, and a time-seeded RNG (RNGSeed 0 means
// "seed from the current time", matching scheduler.New's treatment of
// a zero seed).
func Default() Config {
	return Config{
		MemorySize: 1 << 20,
		PageSize:   256,
		PageLimit:  8,
		Strategy:   scheduler.MLFQ,
		Quantum1:   4,
		Quantum2:   8,
		RNGSeed:    0,
	}
}

// Parse reads a configuration file and applies its keys over
// Default(). Recognized keys: memory_size, page_size, page_limit,
// strategy (FCFS/RR/MLFQ), quantum1, quantum2, rng_seed; an unknown key
// is an error rather than a silent ignore, so a typo in the file is
// caught at startup instead of surfacing as a wrong page size later.
func Parse(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return parse(f, path)
}

func parse(r io.Reader, path string) (Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		value := ""
		if len(fields) > 1 {
			value = fields[1]
		}
		if err := apply(&cfg, key, value); err != nil {
			return Config{}, fmt.Errorf("%s:%d: %w", path, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func apply(cfg *Config, key, value string) error {
	switch key {
	case "memory_size":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("memory_size: %w", err)
		}
		cfg.MemorySize = uint32(n)
	case "page_size":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("page_size: %w", err)
		}
		cfg.PageSize = uint32(n)
	case "page_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("page_limit: %w", err)
		}
		cfg.PageLimit = n
	case "strategy":
		switch strings.ToUpper(value) {
		case "FCFS":
			cfg.Strategy = scheduler.FCFS
		case "RR":
			cfg.Strategy = scheduler.RR
		case "MLFQ":
			cfg.Strategy = scheduler.MLFQ
		default:
			return fmt.Errorf("strategy: unknown value %q", value)
		}
	case "quantum1":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("quantum1: %w", err)
		}
		cfg.Quantum1 = n
	case "quantum2":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("quantum2: %w", err)
		}
		cfg.Quantum2 = n
	case "rng_seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("rng_seed: %w", err)
		}
		cfg.RNGSeed = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
