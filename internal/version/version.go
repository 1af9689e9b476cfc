package version

import (
	"encoding/json"
	"log"
	"os"
)

type Info struct {
	Version string `json:"version"`
}

// Load reads version.json from the working directory. A missing or malformed
// file is not fatal; the engine reports 0.0.0.
func Load() Info {
	data, err := os.ReadFile("version.json")
	if err != nil {
		log.Printf("version: could not read version.json: %v", err)
		return Info{Version: "0.0.0"}
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		log.Printf("version: could not parse version.json: %v", err)
		return Info{Version: "0.0.0"}
	}
	return info
}
