package cmd

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exascience/parclust/vector"
)

// NewNaNCheckCommand returns a command that generates a vector and checks it
// for NaNs.
func NewNaNCheckCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "nancheck",
		Short: "Check a generated vector for NaN values",
		Args:  cobra.NoArgs,
		RunE:  runNaNCheck,
	}
	flags := command.Flags()
	flags.Int("length", 1000000, "the length of the generated vector")
	flags.Int("nan-at", -1, "the index at which to place a NaN (negative for none)")
	flags.Uint64("seed", 1, "the seed for the generated values")
	return command
}

func runNaNCheck(command *cobra.Command, _ []string) (err error) {
	env, err := newEnvironment(command)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.close(command.OutOrStdout()); err == nil {
			err = cerr
		}
	}()

	flags := command.Flags()
	length, _ := flags.GetInt("length")
	nanAt, _ := flags.GetInt("nan-at")
	seed, _ := flags.GetUint64("seed")
	if length < 0 {
		return fmt.Errorf("invalid length: %v", length)
	}
	if nanAt >= length {
		return fmt.Errorf("nan-at %v out of range for length %v", nanAt, length)
	}

	rnd := rand.New(rand.NewPCG(seed, seed))
	xs := make([]float64, length)
	for i := range xs {
		xs[i] = rnd.NormFloat64()
	}
	if nanAt >= 0 {
		xs[nanAt] = math.NaN()
	}

	start := time.Now()
	found, err := vector.AnyNaN(env.cfg, xs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	env.logger.Info("nancheck completed",
		zap.Int("length", length),
		zap.Bool("parallel", env.cfg.ShouldParallelize(length)),
		zap.Duration("elapsed", elapsed),
	)
	fmt.Fprintf(command.OutOrStdout(), "nan: %v\n", found)
	return nil
}
