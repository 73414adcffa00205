// Package cardquery builds the filter predicates and order clauses shared by
// the catalog-wide search and the binder-content listing. Predicates are
// squirrel expressions, so parameter numbering stays correct when they are
// composed into a query that already carries leading parameters (a binder id,
// for example).
package cardquery

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// Builder returns a squirrel statement builder with PostgreSQL placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Conditions translates a CardFilter into predicates against the catalog
// columns. alias prefixes column references ("c" -> "c.name"); pass "" for
// unqualified columns. Absent filter fields contribute no predicate.
func Conditions(f domain.CardFilter, alias string) []sq.Sqlizer {
	var conds []sq.Sqlizer

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + q + "%"
		conds = append(conds, sq.Or{
			sq.ILike{column(alias, "name"): pattern},
			sq.ILike{column(alias, "number"): pattern},
			sq.ILike{column(alias, "set_name"): pattern},
		})
	}

	if t := strings.TrimSpace(f.Type); t != "" {
		conds = append(conds, lowerEq(column(alias, "type"), t))
	}

	if r := strings.TrimSpace(f.Rarity); r != "" {
		conds = append(conds, lowerEq(column(alias, "rarity"), r))
	}

	if s := strings.TrimSpace(f.Set); s != "" {
		conds = append(conds, lowerEq(column(alias, "set_name"), s))
	}

	return conds
}

// Order returns ORDER BY clauses for a binder-content listing. cardAlias
// qualifies catalog columns, entryAlias qualifies binder_cards columns.
//
// Recognized sortBy values:
//   - "name":   by card name, default ascending
//   - "recent": by added_at, default descending, ties broken by name
//   - "rarity": by the fixed rarity-priority ranking, default descending
//     (rarest first), ties broken by name
//
// Anything else falls back to "name". An unrecognized direction falls back to
// the sort's default.
func Order(sortBy, direction, cardAlias, entryAlias string) []string {
	name := column(cardAlias, "name")

	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case domain.SortByRecent:
		dir := normalizeDirection(direction, domain.SortDesc)
		return []string{
			column(entryAlias, "added_at") + " " + strings.ToUpper(dir),
			name + " ASC",
		}
	case domain.SortByRarity:
		dir := normalizeDirection(direction, domain.SortDesc)
		return []string{
			RarityRankExpr(cardAlias) + " " + strings.ToUpper(dir),
			name + " ASC",
		}
	default:
		dir := normalizeDirection(direction, domain.SortAsc)
		return []string{name + " " + strings.ToUpper(dir)}
	}
}

// RarityRankExpr renders the fixed rarity vocabulary as a SQL CASE expression
// mapping the (lowercased) rarity column to its priority. Unknown rarities
// rank 0, below the whole vocabulary. The vocabulary is a fixed in-code list,
// so inlining it is safe.
func RarityRankExpr(alias string) string {
	var b strings.Builder
	b.WriteString("CASE LOWER(")
	b.WriteString(column(alias, "rarity"))
	b.WriteString(")")
	for _, r := range domain.RarityRanking() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", r, domain.RarityRank(r))
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

func normalizeDirection(direction, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case domain.SortAsc:
		return domain.SortAsc
	case domain.SortDesc:
		return domain.SortDesc
	default:
		return fallback
	}
}

func lowerEq(col, value string) sq.Sqlizer {
	return sq.Expr("LOWER("+col+") = ?", strings.ToLower(value))
}

func column(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}
