package models

// AgentResult is the response envelope returned by the agent gateway.
// Success=false with Error set is a reported failure; transport failures
// surface as Go errors instead.
type AgentResult struct {
	Success       bool           `json:"success"`
	Response      *AgentResponse `json:"response,omitempty"`
	ModuleOutputs *ModuleOutputs `json:"module_outputs,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// AgentResponse wraps the agent's untyped result document.
type AgentResponse struct {
	Result map[string]any `json:"result"`
}

// ModuleOutputs carries artifacts produced alongside the agent response.
type ModuleOutputs struct {
	ArtifactFiles []ArtifactFile `json:"artifact_files,omitempty"`
}

// ArtifactFile is an external downloadable file referenced by URL.
type ArtifactFile struct {
	FileURL string `json:"file_url"`
}

// ResultDocument returns the result document, or an empty map if absent.
func (r *AgentResult) ResultDocument() map[string]any {
	if r == nil || r.Response == nil || r.Response.Result == nil {
		return map[string]any{}
	}
	return r.Response.Result
}

// FirstArtifactURL returns the URL of the first artifact file, or "".
func (r *AgentResult) FirstArtifactURL() string {
	if r == nil || r.ModuleOutputs == nil || len(r.ModuleOutputs.ArtifactFiles) == 0 {
		return ""
	}
	return r.ModuleOutputs.ArtifactFiles[0].FileURL
}
