// Package pkg provides the libraries behind curricula, a toolkit for
// analyzing and drawing degree plans.
//
// # Overview
//
// A degree plan is a list of courses placed into terms, linked by
// prerequisites, corequisites and strict corequisites. Curricula checks that
// the requisite graph is acyclic, scores every course by how much of the
// plan it blocks and delays, and draws the plan as a term grid or a
// node-link diagram.
//
// # Architecture
//
//	CSV / curriculum JSON
//	         ↓
//	    [csvstream] + [plan] (streamed rows → courses, terms, requisites)
//	         ↓
//	    [analytics] (cycles, paths, blocking/delay factors, complexity)
//	         ↓
//	    [view] + [scene] + [join] (term grid, highlights, tooltip)
//	    [render/nodelink] (Graphviz diagram)
//	         ↓
//	    SVG / PDF / PNG / DOT / JSON
//
// [pipeline] runs these stages for the CLI and the HTTP server, with
// [cache] in front of rendering and [observability] hooks around each stage.
//
// # Quick Start
//
//	p, err := plan.ParseString(csv)
//	if err != nil {
//	    return err
//	}
//	v := view.New(view.NewGridLayout(1200, 800), view.DefaultOptions())
//	if err := v.SetPlan(p); err != nil {
//	    return err // requisite cycle
//	}
//	_ = v.Select(12)
//	return v.WriteSVG(os.Stdout)
//
// # Main Packages
//
// [plan] - Courses, terms and typed requisite edges. The streaming
// [plan.Builder] reads degree plans and curricula, scheduling the latter.
//
// [analytics] - Generic graph metrics: reachability, blocking factor,
// longest paths, delay factor, centrality, complexity and redundant
// requisites.
//
// [view] - The interactive plan grid. Hover and select highlight requisite
// chains and the longest path; the result is an SVG [scene].
//
// [render/nodelink] - Graphviz DOT output and layouts measured from
// Graphviz SVG.
//
// [io] - Curriculum JSON import and export.
//
// [config] - TOML and YAML settings files.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// # Testing
//
//	go test ./...                 # All tests
//	go test ./pkg/analytics/...   # Specific package
//	go test -run Example ./pkg/... # Examples only
package pkg
