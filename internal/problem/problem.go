// Package problem provides instruction and solution generators backed by a
// YAML problem bank.
package problem

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoSolution is returned by Solve when the bank has no matching problem.
var ErrNoSolution = errors.New("no solution known for instruction")

// Generator produces a fresh instruction.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// Solver produces target code for an instruction, given the current code
// and its last execution output.
type Solver interface {
	Solve(ctx context.Context, instruction, code, output string) (string, error)
}

// Problem is one bank entry.
type Problem struct {
	Instruction string `yaml:"instruction"`
	Solution    string `yaml:"solution"`
}

// Defaults is the bank used when no problems file is configured.
var Defaults = []Problem{
	{Instruction: "Print hello world.", Solution: "print('hello world')\n"},
	{Instruction: "Print the numbers 1 to 5, one per line.", Solution: "for i in range(1, 6):\n    print(i)\n"},
	{Instruction: "Print the sum of the numbers 1 to 100.", Solution: "print(sum(range(1, 101)))\n"},
	{Instruction: "Define a function add(a, b) that returns a + b and print add(2, 3).", Solution: "def add(a, b):\n    return a + b\n\nprint(add(2, 3))\n"},
	{Instruction: "Print the string 'clica' reversed.", Solution: "print('clica'[::-1])\n"},
}

// Bank is a fixed set of problems.
type Bank struct {
	problems []Problem
	rand     *rand.Rand
}

// NewBank returns a bank over problems, or Defaults when empty. A nil rng
// uses a randomly seeded source.
func NewBank(problems []Problem, rng *rand.Rand) *Bank {
	if len(problems) == 0 {
		problems = Defaults
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Bank{problems: problems, rand: rng}
}

// LoadBank reads a YAML list of problems from path.
func LoadBank(path string, rng *rand.Rand) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("problem bank: %w", err)
	}
	var problems []Problem
	if err := yaml.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("problem bank: decode %s: %w", path, err)
	}
	for i, p := range problems {
		if strings.TrimSpace(p.Instruction) == "" {
			return nil, fmt.Errorf("problem bank: %s: entry %d has no instruction", path, i)
		}
	}
	return NewBank(problems, rng), nil
}

// Problems returns the bank contents.
func (b *Bank) Problems() []Problem { return b.problems }

// Generate implements Generator.
func (b *Bank) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.problems[b.rand.IntN(len(b.problems))].Instruction, nil
}

// Solve implements Solver. Instructions match ignoring surrounding space
// and case.
func (b *Bank) Solve(ctx context.Context, instruction, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	want := strings.TrimSpace(instruction)
	for _, p := range b.problems {
		if strings.EqualFold(strings.TrimSpace(p.Instruction), want) {
			return p.Solution, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoSolution, want)
}

var (
	_ Generator = (*Bank)(nil)
	_ Solver    = (*Bank)(nil)
)
