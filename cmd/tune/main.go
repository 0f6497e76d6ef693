// Command tune searches config.Solver's air constants with CMA-ES for
// values that make the pressure/velocity fields settle cleanly after a
// disturbance instead of diverging or oscillating forever. Grounded
// directly on pthm-soup/cmd/optimize's flag/log/CmaEsChol shape, substituting
// a single-scenario headless air-solver run for the teacher's
// multi-seed predator-prey survival evaluation.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/cellsand/config"
)

func main() {
	maxTicks := flag.Int("max-ticks", 600, "headless ticks per evaluation")
	maxEvals := flag.Int("max-evals", 150, "maximum number of CMA-ES evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	gridCx := flag.Int("grid-cx", 48, "evaluation grid width in cells")
	gridCy := flag.Int("grid-cy", 48, "evaluation grid height in cells")
	cell := flag.Int("cell", 4, "cell size in pixels")
	outputDir := flag.String("output", "", "output directory for the log and best config (required)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("-output is required")
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, *maxTicks, *gridCx, *gridCy, *cell)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("creating log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	start := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		raw := params.Denormalize(x)
		clamped := params.Clamp(raw)
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append([]float64(nil), clamped...)
		}

		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness)}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		fmt.Printf("eval %d/%d: fitness=%.3f (best=%.3f) elapsed=%s\n",
			evalCount, *maxEvals, fitness, bestFitness, time.Since(start).Round(time.Second))

		return fitness
	}

	fmt.Printf("tuning %d solver constants, population=%d, max_evals=%d, ticks/eval=%d\n",
		dim, popSize, *maxEvals, *maxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Denormalize(result.X)
	}

	fmt.Printf("\nbest fitness: %.3f\n", bestFitness)
	solver := config.Solver{StackingThreshold: 3, StackingSweepPeriod: 20}
	params.ApplyToSolver(&solver, bestParams)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	yamlPath := filepath.Join(*outputDir, "best_solver.yaml")
	data, err := yaml.Marshal(solver)
	if err != nil {
		log.Printf("marshaling best solver: %v", err)
		return
	}
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		log.Printf("writing best solver: %v", err)
		return
	}
	fmt.Printf("best solver constants saved to: %s\n", yamlPath)
}
