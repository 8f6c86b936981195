package markup

import "os/exec"

// Capabilities records which optional converters are available. It is
// resolved once at startup and passed explicitly; operations that need an
// absent tool fail closed with MissingDependencyError.
type Capabilities struct {
	// RSTTool is the configured reStructuredText converter command.
	RSTTool string
	// RSTPath is the resolved executable path; empty when the tool is not
	// installed.
	RSTPath string
}

// DetectCapabilities probes the PATH for the configured tools.
func DetectCapabilities(rstTool string) Capabilities {
	caps := Capabilities{RSTTool: rstTool}
	if path, err := exec.LookPath(rstTool); err == nil {
		caps.RSTPath = path
	}
	return caps
}

func (c Capabilities) HasRST() bool {
	return c.RSTPath != ""
}
