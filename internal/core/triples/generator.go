package triples

import (
	"strings"
	"time"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

// Generator turns a classified artifact into its canonical statement set.
// It is pure: no store access, fully deterministic for a given artifact.
type Generator struct {
	namespace string
}

func NewGenerator(namespace string) *Generator {
	return &Generator{namespace: strings.TrimRight(namespace, "_")}
}

// Generate emits the artifact's statement set: one type assertion per class
// in the path (ancestors included, so queries match superclasses without
// runtime reasoning), one hasTag per tag, the four fixed metadata
// statements, and the bearsInformationContent link. For k path classes and
// n tags the result is exactly k+n+5 statements, all with the artifact
// identifier as subject.
func (g *Generator) Generate(a domain.Artifact) []domain.Statement {
	out := make([]domain.Statement, 0, len(a.Path)+len(a.Tags)+5)

	for _, class := range a.Path {
		out = append(out, domain.Statement{
			Subject:   a.ID,
			Predicate: PredType,
			Object:    ClassURI(class),
			Kind:      domain.ObjectIRI,
		})
	}

	for _, tag := range a.Tags {
		out = append(out, domain.Statement{
			Subject:   a.ID,
			Predicate: PredHasTag,
			Object:    g.TagURI(tag),
			Kind:      domain.ObjectIRI,
		})
	}

	out = append(out,
		domain.Statement{Subject: a.ID, Predicate: PredHasChecksum, Object: a.Checksum, Kind: domain.ObjectLiteral},
		domain.Statement{Subject: a.ID, Predicate: PredCreator, Object: a.Author, Kind: domain.ObjectLiteral},
		domain.Statement{Subject: a.ID, Predicate: PredDescription, Object: a.Description, Kind: domain.ObjectLiteral},
		domain.Statement{Subject: a.ID, Predicate: PredCreated, Object: a.CreatedAt.UTC().Format(time.RFC3339), Kind: domain.ObjectLiteral},
		domain.Statement{Subject: a.ID, Predicate: PredBearsContent, Object: g.ContentEntityURI(a.Checksum), Kind: domain.ObjectIRI},
	)

	return out
}

// TagURI mints the shared tag node identifier. Tags are normalized so the
// same tag from different uploads resolves to one node.
func (g *Generator) TagURI(tag string) string {
	return g.namespace + "_tag_" + NormalizeTag(tag)
}

// ContentEntityURI is deterministic from the checksum: identical content
// always bears the same content entity.
func (g *Generator) ContentEntityURI(checksum string) string {
	short := checksum
	if len(short) > 16 {
		short = short[:16]
	}
	return g.namespace + "_content_" + short
}

// MintTag returns the statements that create a tag node on first use. They
// live under the tag subject and are not part of any artifact's set.
func (g *Generator) MintTag(tag string) []domain.Statement {
	uri := g.TagURI(tag)
	return []domain.Statement{
		{Subject: uri, Predicate: PredType, Object: ClassTag, Kind: domain.ObjectIRI},
		{Subject: uri, Predicate: PredLabel, Object: NormalizeTag(tag), Kind: domain.ObjectLiteral},
	}
}

// MintContentEntity returns the statements that create the content entity
// instance for a checksum on first use.
func (g *Generator) MintContentEntity(checksum string) []domain.Statement {
	uri := g.ContentEntityURI(checksum)
	return []domain.Statement{
		{Subject: uri, Predicate: PredType, Object: ClassContentEntity, Kind: domain.ObjectIRI},
	}
}

// NormalizeTag lowercases and collapses a tag literal into its shared form.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.ReplaceAll(tag, " ", "_")
	return tag
}
