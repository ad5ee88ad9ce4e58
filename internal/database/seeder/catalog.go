package seeder

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/usecase"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Categories []CategoryEntry `yaml:"categories"`
}

type CategoryEntry struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Skills      []SkillEntry    `yaml:"skills"`
	Children    []CategoryEntry `yaml:"children"`
}

type SkillEntry struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Verification string `yaml:"verification"`
}

func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return c, nil
}

// CatalogSeeder creates the categories and skills of a YAML catalog that
// do not exist yet. Existing entries are matched by name and left alone,
// so running it twice is a no-op.
type CatalogSeeder struct {
	// Raw overrides the embedded catalog.
	Raw []byte
}

func (CatalogSeeder) Name() string { return "catalog" }

func (s CatalogSeeder) Run(ctx context.Context, t Target) error {
	raw := s.Raw
	if len(raw) == 0 {
		raw = defaultCatalog
	}
	cat, err := ParseCatalog(raw)
	if err != nil {
		return err
	}

	existing, err := t.Categories.ListCategories(ctx)
	if err != nil {
		return err
	}
	categories := make(map[string]uuid.UUID, len(existing))
	for _, c := range existing {
		categories[skill.NameKey(c.Name)] = c.ID
	}

	skills, err := existingSkills(ctx, t.Skills)
	if err != nil {
		return err
	}

	w := catalogWriter{t: t, categories: categories, skills: skills}
	for _, entry := range cat.Categories {
		if err := w.category(ctx, entry, nil); err != nil {
			return err
		}
	}
	return nil
}

func existingSkills(ctx context.Context, uc usecase.SkillUsecase) (map[string]struct{}, error) {
	const page = 500
	out := map[string]struct{}{}
	for offset := 0; ; offset += page {
		items, err := uc.ListSkills(ctx, usecase.SkillListFilter{Limit: page, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, s := range items {
			out[skill.NameKey(s.Name)] = struct{}{}
		}
		if len(items) < page {
			return out, nil
		}
	}
}

type catalogWriter struct {
	t          Target
	categories map[string]uuid.UUID
	skills     map[string]struct{}
}

func (w catalogWriter) category(ctx context.Context, e CategoryEntry, parent *uuid.UUID) error {
	key := skill.NameKey(e.Name)
	id, ok := w.categories[key]
	if !ok {
		c, err := w.t.Categories.CreateCategory(ctx, usecase.CreateCategoryInput{
			Name:        e.Name,
			Description: e.Description,
			ParentID:    parent,
		})
		if err != nil {
			return fmt.Errorf("category %q: %w", e.Name, err)
		}
		id = c.ID
		w.categories[key] = id
	}

	for _, se := range e.Skills {
		skey := skill.NameKey(se.Name)
		if _, ok := w.skills[skey]; ok {
			continue
		}
		_, err := w.t.Skills.CreateSkill(ctx, usecase.CreateSkillInput{
			Name:                    se.Name,
			Description:             se.Description,
			CategoryID:              id,
			VerificationRequirement: skill.VerificationRequirement(se.Verification),
		})
		if err != nil {
			return fmt.Errorf("skill %q: %w", se.Name, err)
		}
		w.skills[skey] = struct{}{}
	}

	for _, child := range e.Children {
		if err := w.category(ctx, child, &id); err != nil {
			return err
		}
	}
	return nil
}
