package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Corpus is the on-disk ingest format: one YAML document holding
// repositories, opportunities, and user profiles.
type Corpus struct {
	Repositories  []*Repository  `yaml:"repositories"`
	Opportunities []*Opportunity `yaml:"opportunities"`
	Profiles      []*UserProfile `yaml:"profiles"`
}

// LoadCorpus reads and decodes a corpus file.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	return ParseCorpus(data)
}

// ParseCorpus decodes corpus YAML.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	for i, opp := range c.Opportunities {
		if opp.ID == "" {
			return nil, fmt.Errorf("opportunity %d has no id", i)
		}
	}
	return &c, nil
}

// MemoryStoreFromCorpus loads a parsed corpus into a fresh in-memory store.
func MemoryStoreFromCorpus(c *Corpus) *MemoryStore {
	m := NewMemoryStore()
	for _, repo := range c.Repositories {
		m.PutRepository(repo)
	}
	for _, profile := range c.Profiles {
		m.PutProfile(profile)
	}
	for _, opp := range c.Opportunities {
		m.PutOpportunity(opp)
	}
	return m
}

// UnmarshalYAML decodes an opportunity, mapping the difficulty name onto
// the tier enum. Unknown names degrade to intermediate rather than failing
// the batch.
func (o *Opportunity) UnmarshalYAML(node *yaml.Node) error {
	type plain Opportunity
	var aux struct {
		plain      `yaml:",inline"`
		Difficulty string `yaml:"difficulty"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*o = Opportunity(aux.plain)
	o.Difficulty, _ = ParseTier(aux.Difficulty)
	return nil
}

// UnmarshalYAML decodes a user profile, mapping the skill level name onto
// the tier enum.
func (u *UserProfile) UnmarshalYAML(node *yaml.Node) error {
	type plain UserProfile
	var aux struct {
		plain      `yaml:",inline"`
		SkillLevel string `yaml:"skill_level"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*u = UserProfile(aux.plain)
	u.SkillLevel, _ = ParseTier(aux.SkillLevel)
	return nil
}
