package cmd

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/exascience/parclust/matrix"
)

// NewMultiplyCommand returns a command that multiplies two generated
// matrices and compares the result with the serial product.
func NewMultiplyCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "multiply",
		Short: "Multiply two generated matrices",
		Args:  cobra.NoArgs,
		RunE:  runMultiply,
	}
	flags := command.Flags()
	flags.Int("m", 512, "the number of rows of the left operand")
	flags.Int("k", 512, "the number of columns of the left operand and rows of the right operand")
	flags.Int("n", 512, "the number of columns of the right operand")
	flags.Uint64("seed", 1, "the seed for the generated values")
	return command
}

func randomDense(rnd *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rnd.Float64()
	}
	return mat.NewDense(r, c, data)
}

func runMultiply(command *cobra.Command, _ []string) (err error) {
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
	m, _ := flags.GetInt("m")
	k, _ := flags.GetInt("k")
	n, _ := flags.GetInt("n")
	seed, _ := flags.GetUint64("seed")
	if m < 1 || k < 1 || n < 1 {
		return fmt.Errorf("invalid dimensions %vx%v times %vx%v", m, k, k, n)
	}

	rnd := rand.New(rand.NewPCG(seed, seed))
	a := randomDense(rnd, m, k)
	b := randomDense(rnd, k, n)

	start := time.Now()
	c, err := matrix.Multiply(env.cfg, a, b)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	serial, err := matrix.MultiplySerial(a, b)
	if err != nil {
		return err
	}

	env.logger.Info("multiply completed",
		zap.Int("m", m), zap.Int("k", k), zap.Int("n", n),
		zap.Bool("parallel", env.cfg.ShouldParallelize(max(m*k, k*n))),
		zap.Duration("elapsed", elapsed),
	)
	fmt.Fprintf(command.OutOrStdout(), "identical to serial: %v\n", mat.Equal(c, serial))
	return nil
}
