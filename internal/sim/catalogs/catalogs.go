// Package catalogs loads the immutable reference fixtures: the looted-artwork
// catalog, the agent roster, and the intelligence skill tree. Each catalog
// carries a sha256 digest of its raw JSON so clients can cache-validate.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Catalogs struct {
	Artworks ArtworkCatalog
	Agents   AgentCatalog
	Skills   SkillCatalog
}

type ArtworkCatalog struct {
	Defs   []ArtworkDef
	ByID   map[int]ArtworkDef
	Digest string
}

// ArtworkDef describes one stolen artwork. The recovery progress lives in
// session state, not here; catalogs stay immutable.
type ArtworkDef struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	Year          string `json:"year"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	Location      string `json:"location"`
	EstimatedDays int    `json:"estimated_days"`
}

type AgentCatalog struct {
	Defs   []AgentDef
	ByID   map[int]AgentDef
	Digest string
}

type AgentDef struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Codename       string `json:"codename"`
	Photo          string `json:"photo"`
	Location       string `json:"location"`
	Specialization string `json:"specialization"`
}

type SkillCatalog struct {
	Defs   []SkillDef
	ByID   map[int]SkillDef
	Digest string
}

// SkillDef carries a structured effect descriptor instead of prose parsing:
// EffectType names the mechanic and MagnitudePerLevel its per-level strength.
type SkillDef struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	ParentID          int     `json:"parent_id,omitempty"`
	MaxLevel          int     `json:"max_level"`
	Cost              int     `json:"cost"`
	EffectType        string  `json:"effect_type"`
	MagnitudePerLevel float64 `json:"magnitude_per_level"`
}

// Known skill effect types.
const (
	EffectFailureReduction = "FAILURE_REDUCTION"
	EffectSpawnRate        = "SPAWN_RATE"
)

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadArtworks(filepath.Join(configDir, "artworks.json"), &c.Artworks); err != nil {
		return nil, err
	}
	if err := loadAgents(filepath.Join(configDir, "agents.json"), &c.Agents); err != nil {
		return nil, err
	}
	if err := loadSkills(filepath.Join(configDir, "skills.json"), &c.Skills); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadArtworks(path string, out *ArtworkCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("artworks.json: %w", err)
	}
	out.ByID = make(map[int]ArtworkDef, len(out.Defs))
	for _, d := range out.Defs {
		if d.ID <= 0 {
			return fmt.Errorf("artworks.json: bad id %d", d.ID)
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("artworks.json: duplicate id %d", d.ID)
		}
		out.ByID[d.ID] = d
	}
	if len(out.Defs) == 0 {
		return fmt.Errorf("artworks.json: empty catalog")
	}
	return nil
}

func loadAgents(path string, out *AgentCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("agents.json: %w", err)
	}
	out.ByID = make(map[int]AgentDef, len(out.Defs))
	for _, d := range out.Defs {
		if d.ID <= 0 {
			return fmt.Errorf("agents.json: bad id %d", d.ID)
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("agents.json: duplicate id %d", d.ID)
		}
		out.ByID[d.ID] = d
	}
	if len(out.Defs) == 0 {
		return fmt.Errorf("agents.json: empty catalog")
	}
	return nil
}

func loadSkills(path string, out *SkillCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("skills.json: %w", err)
	}
	out.ByID = make(map[int]SkillDef, len(out.Defs))
	for _, d := range out.Defs {
		if d.ID <= 0 {
			return fmt.Errorf("skills.json: bad id %d", d.ID)
		}
		if d.MaxLevel <= 0 {
			return fmt.Errorf("skills.json: skill %d: max_level must be positive", d.ID)
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("skills.json: duplicate id %d", d.ID)
		}
		out.ByID[d.ID] = d
	}
	for _, d := range out.Defs {
		if d.ParentID != 0 {
			if _, ok := out.ByID[d.ParentID]; !ok {
				return fmt.Errorf("skills.json: skill %d: unknown parent %d", d.ID, d.ParentID)
			}
		}
	}
	return nil
}
