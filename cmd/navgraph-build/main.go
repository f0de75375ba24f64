// Command navgraph-build runs the pipeline end to end against a set of
// input files and prints the resulting graph summary and, when -query is
// given, the outcome of a single path query between (-from-x, -from-y)
// and (-to-x, -to-y).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/waypoint-works/navgraph/pkg/navgraph"
)

func main() {
	calibPath := flag.String("calibration", "", "path to the calibration JSON record")
	anchorsPath := flag.String("anchors", "", "path to the anchors JSON document")
	pairsPath := flag.String("pairs", "", "path to the anchor-pair schedule (CSV)")
	coveragePath := flag.String("coverage", "", "path to the coverage-polygon JSON document")
	obstaclesPath := flag.String("obstacles", "", "path to the obstacle JSON document (optional)")
	fromX := flag.Float64("from-x", 0, "query start x, millimetres")
	fromY := flag.Float64("from-y", 0, "query start y, millimetres")
	toX := flag.Float64("to-x", 0, "query end x, millimetres")
	toY := flag.Float64("to-y", 0, "query end y, millimetres")
	doQuery := flag.Bool("query", false, "run a path query between (from-x,from-y) and (to-x,to-y)")
	flag.Parse()

	if *calibPath == "" || *anchorsPath == "" || *pairsPath == "" || *coveragePath == "" {
		log.Fatal("calibration, anchors, pairs, and coverage flags are required")
	}

	var calib navgraph.CalibrationRecord
	if err := readJSON(*calibPath, &calib); err != nil {
		log.Fatal(err)
	}

	anchors, err := os.ReadFile(*anchorsPath)
	if err != nil {
		log.Fatal(err)
	}
	pairs, err := os.ReadFile(*pairsPath)
	if err != nil {
		log.Fatal(err)
	}
	coverage, err := os.ReadFile(*coveragePath)
	if err != nil {
		log.Fatal(err)
	}

	var obstacles []navgraph.ObstacleRecord
	if *obstaclesPath != "" {
		if err := readJSON(*obstaclesPath, &obstacles); err != nil {
			log.Fatal(err)
		}
	}

	logger := log.New(os.Stderr, "navgraph: ", log.LstdFlags)
	pipeline, diags, err := navgraph.Build(context.Background(), calib, anchors, pairs, coverage,
		obstacles, navgraph.DefaultOptions(), logger)
	if err != nil {
		log.Fatal(err)
	}

	graph := pipeline.Graph()
	fmt.Printf("nodes: %d\n", len(graph.Nodes))
	fmt.Printf("edges: %d\n", len(graph.Edges))
	fmt.Printf("zones: %d\n", len(graph.ZoneWaypoints))
	fmt.Printf("diagnostics: %d\n", len(diags))

	if !*doQuery {
		return
	}

	result, err := pipeline.Query(context.Background(),
		navgraph.Point{X: *fromX, Y: *fromY}, navgraph.Point{X: *toX, Y: *toY})
	if err != nil {
		log.Fatal(err)
	}
	if !result.Success {
		fmt.Printf("path query failed: %s\n", result.Reason)
		return
	}
	fmt.Printf("path found: %d points, total distance %.1f\n", len(result.Points), result.TotalDistance)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
