package catalogs

import "testing"

func TestLoadShippedCatalogs(t *testing.T) {
	c, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Artworks.Defs) == 0 || len(c.Agents.Defs) == 0 || len(c.Skills.Defs) == 0 {
		t.Fatalf("catalogs should not be empty")
	}
	for _, cat := range []string{c.Artworks.Digest, c.Agents.Digest, c.Skills.Digest} {
		if len(cat) != 64 {
			t.Fatalf("digest should be sha256 hex, got %q", cat)
		}
	}
	if _, ok := c.Artworks.ByID[1]; !ok {
		t.Fatalf("artwork 1 missing from index")
	}
	for _, sk := range c.Skills.Defs {
		switch sk.EffectType {
		case EffectFailureReduction, EffectSpawnRate:
		default:
			t.Fatalf("skill %d has unknown effect type %q", sk.ID, sk.EffectType)
		}
		if sk.MagnitudePerLevel <= 0 {
			t.Fatalf("skill %d has non-positive magnitude", sk.ID)
		}
	}
}

func TestLoadRejectsMissingDir(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error for empty config dir")
	}
}
