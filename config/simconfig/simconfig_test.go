/*
 * osimsim - Configuration file parser test cases.
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

package simconfig

import (
	"strings"
	"testing"

	"github.com/rcornwell/osimsim/internal/scheduler"
)

func TestParseOverridesDefaults(t *testing.T) {
	src := `
# simulator configuration
memory_size 65536
page_size 512
page_limit 16
strategy RR
quantum1 2
quantum2 6
rng_seed 99
`
	cfg, err := parse(strings.NewReader(src), "test.cfg")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Config{
		MemorySize: 65536,
		PageSize:   512,
		PageLimit:  16,
		Strategy:   scheduler.RR,
		Quantum1:   2,
		Quantum2:   6,
		RNGSeed:    99,
	}
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestParseBlankLinesAndComments(t *testing.T) {
	src := "\n  # just a comment\n\npage_size 128 # inline note\n"
	cfg, err := parse(strings.NewReader(src), "test.cfg")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.PageSize != 128 {
		t.Fatalf("PageSize = %d, want 128", cfg.PageSize)
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := parse(strings.NewReader("bogus_key 1\n"), "test.cfg")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseBadStrategy(t *testing.T) {
	_, err := parse(strings.NewReader("strategy ROUNDROBIN\n"), "test.cfg")
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestParseBadNumber(t *testing.T) {
	_, err := parse(strings.NewReader("page_size abc\n"), "test.cfg")
	if err == nil {
		t.Fatal("expected error for non-numeric page_size")
	}
}

func TestDefaultIsMLFQ(t *testing.T) {
	if Default().Strategy != scheduler.MLFQ {
		t.Fatal("expected default strategy to be MLFQ")
	}
}
