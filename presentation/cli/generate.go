package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGenerateCommand(app *App) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print random test data",
	}
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "seed for reproducible output (0: configured seed or unseeded)")

	sized := func(use, short string, fn func(n int) string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <n>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return Error.New("size %q: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), fn(n))
				return nil
			},
		}
	}

	cmd.AddCommand(
		sized("password", "Password of 4n characters, n from each character class", func(n int) string {
			return app.generator(seed).Password(n)
		}),
		sized("digits", "Number of exactly n decimal digits", func(n int) string {
			return app.generator(seed).FixedDigits(n)
		}),
		sized("string", "n characters from [0-9a-z]", func(n int) string {
			return app.generator(seed).String(n)
		}),
		&cobra.Command{
			Use:   "int <min> <max>",
			Short: "Integer in [min, max]",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				bounds := make([]int, 2)
				for i, arg := range args {
					n, err := strconv.Atoi(arg)
					if err != nil {
						return Error.New("bound %q: %w", arg, err)
					}
					bounds[i] = n
				}
				fmt.Fprintln(cmd.OutOrStdout(), app.generator(seed).Integer(bounds[0], bounds[1]))
				return nil
			},
		},
	)
	return cmd
}
