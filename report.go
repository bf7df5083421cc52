package provenance

import "encoding/json"

// Report is the provenance record for one gather call. Summary reports
// populate only the first four fields; full reports populate everything.
// Full selects the serialized shape: summary reports carry exactly the
// four summary keys, full reports carry every key, empty or not.
type Report struct {
	Time           string
	RuntimeVersion string
	ModuleVersions map[string]string
	GitVersions    map[string]RepoRecord

	// Full-mode fields.
	Executable  string
	Args        []string
	SearchPath  []string
	ConfigPaths map[string]string
	Platform    map[string]any
	GPUs        *GPUResult
	Assets      map[string]AssetEntry

	Full bool
}

func (r Report) MarshalJSON() ([]byte, error) {
	type summaryReport struct {
		Time           string                `json:"time"`
		RuntimeVersion string                `json:"go_version"`
		ModuleVersions map[string]string     `json:"module_versions"`
		GitVersions    map[string]RepoRecord `json:"git_versions"`
	}
	s := summaryReport{r.Time, r.RuntimeVersion, r.ModuleVersions, r.GitVersions}
	if !r.Full {
		return json.Marshal(s)
	}
	assets := r.Assets
	if assets == nil {
		assets = map[string]AssetEntry{}
	}
	return json.Marshal(struct {
		summaryReport
		Executable  string                `json:"executable"`
		Args        []string              `json:"args"`
		SearchPath  []string              `json:"search_path"`
		ConfigPaths map[string]string     `json:"config_paths"`
		Platform    map[string]any        `json:"platform"`
		GPUs        *GPUResult            `json:"gpus"`
		Assets      map[string]AssetEntry `json:"assets"`
	}{s, r.Executable, orEmpty(r.Args), orEmpty(r.SearchPath), r.ConfigPaths, r.Platform, r.GPUs, assets})
}

// RepoRecord describes the git repository enclosing a component's source
// checkout. Path is populated in full mode only.
type RepoRecord struct {
	Path string   `json:"path,omitempty"`
	Git  GitState `json:"git"`
}

// GitState is the commit and dirty-state snapshot of one repository.
// Summary reports serialize modified and untracked files as counts; full
// reports serialize the sorted path lists plus the configured remotes.
type GitState struct {
	SHA1      string
	Remotes   []string
	Modified  []string
	Untracked []string

	// Full selects the list-shaped serialization.
	Full bool
}

func (g GitState) MarshalJSON() ([]byte, error) {
	if g.Full {
		return json.Marshal(struct {
			SHA1      string   `json:"sha1"`
			Remotes   []string `json:"remotes"`
			Modified  []string `json:"modified_files"`
			Untracked []string `json:"untracked_files"`
		}{g.SHA1, orEmpty(g.Remotes), orEmpty(g.Modified), orEmpty(g.Untracked)})
	}
	return json.Marshal(struct {
		SHA1      string `json:"sha1"`
		Modified  int    `json:"modified_files"`
		Untracked int    `json:"untracked_files"`
	}{g.SHA1, len(g.Modified), len(g.Untracked)})
}

// orEmpty keeps nil slices out of the JSON output ([] instead of null).
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AssetRecord is a successful fingerprint of one asset file. Timestamps
// are ISO-8601. Peek is present only when a format summarizer produced one.
type AssetRecord struct {
	Size   int64          `json:"size"`
	ATime  string         `json:"atime"`
	MTime  string         `json:"mtime"`
	CTime  string         `json:"ctime"`
	BLAKE3 string         `json:"blake3"`
	Peek   map[string]any `json:"peek,omitempty"`
}

// AssetEntry is either a fingerprint record or the error text captured
// while trying to produce one. It serializes as the record object on
// success and as a bare string on failure.
type AssetEntry struct {
	Record *AssetRecord
	Err    string
}

func (e AssetEntry) MarshalJSON() ([]byte, error) {
	if e.Err != "" {
		return json.Marshal(e.Err)
	}
	return json.Marshal(e.Record)
}

// GPURecord describes one detected accelerator.
type GPURecord struct {
	Index          int    `json:"index"`
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	DriverVersion  string `json:"driver_version"`
	MemoryTotalMiB int    `json:"memory_total_mib"`
	MemoryUsedMiB  int    `json:"memory_used_mib"`
	UtilizationPct int    `json:"utilization_pct"`
	TemperatureC   int    `json:"temperature_c"`
}

// GPUResult carries one of three probe outcomes: structured records, the
// raw text captured from a failed invocation, or the fixed absence
// sentinel. Text takes precedence when set; it serializes as a bare
// string, records serialize as a list.
type GPUResult struct {
	GPUs []GPURecord
	Text string
}

func (r GPUResult) MarshalJSON() ([]byte, error) {
	if r.Text != "" {
		return json.Marshal(r.Text)
	}
	gpus := r.GPUs
	if gpus == nil {
		gpus = []GPURecord{}
	}
	return json.Marshal(gpus)
}
