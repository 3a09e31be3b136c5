// Package graph defines the processing graph built by script evaluation.
// The graph is a DAG of source nodes (shapes, grids), operation nodes
// (boolean operations, smoothing, parametrisation, remeshing, queries) and
// output nodes naming the results to report.
package graph
