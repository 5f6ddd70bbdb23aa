package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LQ758/phonoscore/internal/phoneme"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Pronunciation dictionary utilities",
}

var dictCheckCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Verify that a reference sentence maps cleanly to phonemes",
	Long: `Check whether every word of the given reference sentence is present in the
pronunciation dictionary. Prints the expected phoneme sequence on success;
on failure lists the missing words with nearest-headword suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runDictCheck,
}

func init() {
	dictCmd.AddCommand(dictCheckCmd)
	rootCmd.AddCommand(dictCmd)
}

func runDictCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dict, err := buildDictionary(cfg)
	if err != nil {
		return err
	}

	mapper := phoneme.NewMapper(dict)
	units, err := mapper.Map(args[0])
	if err != nil {
		var unmappable *phoneme.UnmappableError
		if errors.As(err, &unmappable) {
			for _, w := range unmappable.Words {
				line := fmt.Sprintf("not in dictionary: %s", w)
				if sugg := unmappable.Suggestions[w]; len(sugg) > 0 {
					names := make([]string, len(sugg))
					for i, s := range sugg {
						names[i] = s.Word
					}
					line += fmt.Sprintf(" (did you mean: %s?)", strings.Join(names, ", "))
				}
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
		}
		return err
	}

	var (
		symbols  []string
		lastWord = -1
	)
	for _, u := range units {
		if u.WordIndex != lastWord {
			if lastWord >= 0 {
				symbols = append(symbols, "|")
			}
			lastWord = u.WordIndex
		}
		symbols = append(symbols, u.Symbol)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d units: %s\n", len(units), strings.Join(symbols, " "))
	return nil
}
