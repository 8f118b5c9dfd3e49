// Command cartograph is a small operations CLI over a map database: seed a
// demo drawing, print map statistics, or run node cleanup on an object.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cartograph/application/actions"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	"cartograph/domain/graph"
	"cartograph/infrastructure/config"
	"cartograph/infrastructure/persistence/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: cartograph [-config file] <seed|stats|cleanup> [args]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	backend, err := sqlite.New(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("cannot open map database", zap.Error(err))
	}
	defer backend.Close()

	m := graph.NewMap(backend, logger)
	ctx := context.Background()

	switch cmd := flag.Arg(0); cmd {
	case "seed":
		err = runSeed(ctx, m)
	case "stats":
		err = runStats(ctx, m)
	case "cleanup":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: cartograph cleanup <object-id>")
			os.Exit(2)
		}
		err = runCleanup(ctx, m, valueobjects.EntityID(flag.Arg(1)))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// runSeed draws one object: a rough circle of point nodes joined by edges,
// with a couple of near-duplicate points so a later cleanup has work to do
func runSeed(ctx context.Context, m *graph.Map) error {
	history := actions.NewHistory(m, zap.NewNop())

	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	if err != nil {
		return err
	}

	const count = 8
	var previous *graph.NodeRef
	var first *graph.NodeRef
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / count
		center := valueobjects.NewVector(10*math.Cos(angle), 10*math.Sin(angle), 0)

		point, err := m.CreateNode(ctx, object.ID(), entities.NodeTypePoint)
		if err != nil {
			return err
		}
		if err := point.SetCenter(ctx, center); err != nil {
			return err
		}
		if err := point.SetRadius(ctx, 4); err != nil {
			return err
		}
		// Every other point gets a jittered twin close enough to merge
		if i%2 == 1 {
			twin, err := m.CreateNode(ctx, object.ID(), entities.NodeTypePoint)
			if err != nil {
				return err
			}
			if err := twin.SetCenter(ctx, center.Add(valueobjects.NewVector(0.5, 0, 0))); err != nil {
				return err
			}
			if err := twin.SetRadius(ctx, 4); err != nil {
				return err
			}
		}
		if previous != nil {
			if err := history.Do(ctx, actions.CreateEdge{A: previous.ID(), B: point.ID()}); err != nil {
				return err
			}
		} else {
			first = point
		}
		previous = point
	}
	if err := history.Do(ctx, actions.CreateEdge{A: previous.ID(), B: first.ID()}); err != nil {
		return err
	}

	fmt.Println("seeded object", object.ID())
	return nil
}

func runStats(ctx context.Context, m *graph.Map) error {
	everything := valueobjects.BoxAround(valueobjects.ZeroVector(), math.MaxFloat64/4)
	nodes, err := m.NodesInArea(ctx, everything)
	if err != nil {
		return err
	}

	counts := map[entities.NodeType]int{}
	edges := map[valueobjects.EntityID]bool{}
	for _, node := range nodes {
		nodeType, err := node.NodeType(ctx)
		if err != nil {
			return err
		}
		counts[nodeType]++
		incident, err := node.Edges(ctx)
		if err != nil {
			return err
		}
		for _, edge := range incident {
			edges[edge.ID()] = true
		}
	}

	fmt.Printf("nodes: %d (%d objects, %d points), edges: %d\n",
		len(nodes), counts[entities.NodeTypeObject], counts[entities.NodeTypePoint], len(edges))
	return nil
}

func runCleanup(ctx context.Context, m *graph.Map, object valueobjects.EntityID) error {
	node := m.Node(object)
	valid, err := node.Valid(ctx)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("no valid node %s", object)
	}

	history := actions.NewHistory(m, zap.NewNop())
	if err := history.Do(ctx, actions.Cleanup{Node: object}); err != nil {
		return err
	}

	center, err := node.Center(ctx)
	if err != nil {
		return err
	}
	radius, err := node.Radius(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("cleaned %s: center (%g, %g, %g), radius %g\n",
		object, center.X(), center.Y(), center.Z(), radius)
	return nil
}
