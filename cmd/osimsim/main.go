/*
 * osimsim - Simulator entry point.
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

package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/osimsim/config/simconfig"
	"github.com/rcornwell/osimsim/internal/console"
	"github.com/rcornwell/osimsim/internal/system"
	"github.com/rcornwell/osimsim/util/logger"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Mirror all log records to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("unable to create log file: " + err.Error())
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	log := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(log)

	cfg := simconfig.Default()
	if *optConfig != "" {
		parsed, err := simconfig.Parse(*optConfig)
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		cfg = parsed
	}

	log.Info("osimsim started", "memory_size", cfg.MemorySize, "page_size", cfg.PageSize,
		"page_limit", cfg.PageLimit, "strategy", cfg.Strategy)

	sys := system.New(system.Config{
		MemorySize: cfg.MemorySize,
		PageSize:   cfg.PageSize,
		PageLimit:  cfg.PageLimit,
		RNGSeed:    cfg.RNGSeed,
	}, log)
	if err := sys.SetStrategy(cfg.Strategy.String()); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
	if err := sys.SetRR(cfg.Quantum1, cfg.Quantum2); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	console.Run(sys)

	log.Info("osimsim shutting down")
}
