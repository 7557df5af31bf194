package keyword

// DefaultTaxonomy is the curated business keyword list, scanned in order.
// The first matching term is the one reported, so more specific phrases
// come before the generic single words at the end.
var DefaultTaxonomy = []string{
	// VISORO products
	"cartinspect",
	"soluție geospațială",
	"solutie geospatiala",
	"inspecție fiscală",
	"inspectie fiscala",
	"cartografie digitală",
	"cartografie digitala",
	"servicii de cartografie",

	// RENNS
	"registrul electronic national al nomenclaturii stradale",
	"registrul electronic național al nomenclaturii stradale",
	"nomenclatura stradala",
	"nomenclatură stradală",
	"nomenclator stradal",

	// RSV
	"registrul spatiilor verzi",
	"registrul spațiilor verzi",
	"registru spatii verzi",
	"registru spații verzi",

	// GIS
	"sistem geografic",
	"sistem informatic geografic",
	"platforma gis",
	"platformă gis",
	"sistem gis",
	"software gis",
	"aplicatie gis",
	"aplicație gis",

	// Ortofotoplan
	"ortofotoplan",
	"orto foto plan",
	"ortofoto",

	// Cadastru / cartografiere
	"cartografiere",
	"hărți digitale",
	"harti digitale",
	"harta cadastrala",
	"hartă cadastrală",
	"topografie",
	"topografic",
	"cadastru",
	"cadastral",
	"geospatial",
	"geospațial",

	// Registru agricol
	"registru agricol",
	"registrul agricol",

	// Urbanism
	"plan urbanistic",
	"pug digital",
	"puz digital",
	"urbanism digital",
	"documentatie urbanistica",
	"documentație urbanistică",

	// Inventariere
	"inventariere spatii verzi",
	"inventariere spații verzi",
	"evidenta spatii verzi",
	"evidență spații verzi",
	"inventariere domeniu public",
	"evidenta bunuri publice",
	"evidență bunuri publice",

	// Short tokens, matched on word boundaries only
	"gis",
	"nomenclator",
	"nomenclatură",

	// Low-false-positive phrases
	"spatii verzi",
	"spații verzi",

	// Brand names. "rsv" stays out of the taxonomy: it collides with the
	// RSV virus in medical acquisitions.
	"renns",
}

// DefaultWordBoundaryTokens are taxonomy entries too short or collision
// prone for substring matching ("gis" is inside "logistice").
var DefaultWordBoundaryTokens = []string{"gis", "rsv", "pug", "puz", "pud", "renns"}
