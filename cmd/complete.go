package cmd

import (
	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	var methods predict.Set
	for _, m := range taxlots.Methods() {
		methods = append(methods, m.String())
	}
	topics, _ := docs.Names()

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*"),
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"gains": {
				Flags: map[string]complete.Predictor{
					"method":  methods,
					"format":  predict.Set{"text", "markdown", "json"},
					"details": predict.Nothing,
					"price":   predict.Something,
					"date":    predict.Something,
				},
				Args: predict.Files("*"),
			},
			"methods": {},
			"schwab": {
				Flags: map[string]complete.Predictor{
					"t": predict.Files("*.csv"),
					"e": predict.Files("*.csv"),
					"o": predict.Files("*.csv"),
				},
			},
			"topic": {
				Args: predict.Set(topics),
			},
		},
	}
}
