// Package chartpress handles the invocation of the external chart
// build tool and the read-only parsing of its configuration file.
//
// The tool itself is a black box: chartship constructs its argument
// list (`build --commit-range <range> [--push]`), runs it as a child
// process, and streams its output through unchanged. The only thing
// chartship reads from chartpress.yaml is the chart and image layout,
// to validate the image repositories a push build will publish.
package chartpress
