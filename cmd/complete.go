package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	periods = predict.Set{"day", "week", "month", "quarter", "year"}
	output  = map[string]complete.Predictor{"json": predict.Nothing}
)

func withOutput(flags map[string]complete.Predictor) map[string]complete.Predictor {
	for k, v := range output {
		flags[k] = v
	}
	return flags
}

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"data-dir":  predict.Dirs("*"),
			"cache":     predict.Files("*.db"),
			"yahoo-url": predict.Something,
			"today":     predict.Something,
			"benchmark": predict.Something,
			"v":         predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"compare": {Flags: withOutput(map[string]complete.Predictor{
				"u": predict.Something,
				"g": predict.Something,
				"b": predict.Something,
				"s": predict.Something,
				"p": periods,
			})},
			"performance": {Flags: withOutput(map[string]complete.Predictor{
				"u": predict.Something,
				"b": predict.Something,
			})},
			"net": {Flags: withOutput(map[string]complete.Predictor{
				"u":     predict.Something,
				"start": predict.Something,
				"end":   predict.Something,
			})},
			"holdings": {Flags: withOutput(map[string]complete.Predictor{
				"u": predict.Something,
				"d": predict.Something,
			})},
			"leaderboard": {Flags: withOutput(map[string]complete.Predictor{
				"g": predict.Something,
				"w": predict.Something,
			})},
			"history": {Flags: withOutput(map[string]complete.Predictor{
				"u":     predict.Something,
				"start": predict.Something,
				"end":   predict.Something,
				"p":     periods,
			})},
			"trades": {Flags: withOutput(map[string]complete.Predictor{
				"u": predict.Something,
				"n": predict.Something,
			})},
			"ranking": {Flags: withOutput(map[string]complete.Predictor{
				"g": predict.Something,
				"b": predict.Something,
			})},
			"fmt":   {Flags: map[string]complete.Predictor{"u": predict.Something}},
			"serve": {Flags: map[string]complete.Predictor{"env": predict.Files("*")}},
			"topic": {
				Flags: map[string]complete.Predictor{"list": predict.Nothing},
				Args:  predict.Set{"ledger", "returns", "badges", "*"},
			},
		},
	}
}
