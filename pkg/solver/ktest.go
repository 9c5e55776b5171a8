package solver

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/errors"
)

// KTestResult holds the parsed objects of one .ktest file: a mapping from
// symbolic variable name to its concrete int values.
type KTestResult struct {
	Path    string
	Objects map[string][]int
}

var (
	ktestNameRe = regexp.MustCompile(`object\s+\d+:\s+name:\s+'([^']+)'`)
	ktestIntRe  = regexp.MustCompile(`object\s+\d+:\s+int\s*:\s*(.+)`)
)

// parseKTestOutput parses the textual output of ktest-tool.
//
// The tool prints, per object, lines of the form
//
//	object 0: name: 'color_1'
//	object 0: size: 4
//	object 0: int : 2
//
// Only name and int lines matter here; sizes and hex/text renderings are
// ignored. Objects whose int line fails to parse are skipped rather than
// aborting the whole file.
func parseKTestOutput(output, path string) KTestResult {
	result := KTestResult{Path: path, Objects: make(map[string][]int)}

	var current string
	for _, line := range strings.Split(output, "\n") {
		if m := ktestNameRe.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		m := ktestIntRe.FindStringSubmatch(line)
		if m == nil || current == "" {
			continue
		}
		values, ok := parseIntList(m[1])
		if ok {
			result.Objects[current] = values
		}
		current = ""
	}
	return result
}

func parseIntList(s string) ([]int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// Assignment maps the parsed objects back onto node indices.
//
// Two shapes are supported: one "color_i" object per node (the generated
// program's shape), or a single "color" object holding the whole array.
// Result file ordering is irrelevant - names carry the node index.
// Returns MALFORMED_SOLVER_RESULT if neither shape yields a color for every
// node.
func (r KTestResult) Assignment(nodes int) (coloring.Assignment, error) {
	a := make(coloring.Assignment, 0, nodes)
	for i := 0; i < nodes; i++ {
		values, ok := r.Objects[fmt.Sprintf("color_%d", i)]
		if !ok || len(values) == 0 {
			break
		}
		a = append(a, values[0])
	}
	if len(a) == nodes {
		return a, nil
	}

	if values, ok := r.Objects["color"]; ok && len(values) >= nodes {
		return coloring.Assignment(values[:nodes]), nil
	}

	return nil, errors.New(errors.ErrCodeMalformedResult,
		"%s: found colors for %d of %d nodes", r.Path, len(a), nodes)
}

// readKTestFile runs ktest-tool on one .ktest file and parses its output.
func readKTestFile(ctx context.Context, tool, path string) (KTestResult, error) {
	cmd := exec.CommandContext(ctx, tool, path)
	out, err := cmd.Output()
	if err != nil {
		return KTestResult{}, errors.Wrap(errors.ErrCodeSolverProcess, err, "ktest-tool %s", path)
	}
	return parseKTestOutput(string(out), path), nil
}
