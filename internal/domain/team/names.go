package team

// canonicalNames maps feed abbreviations to full club names. The feed only
// carries abbreviations, so ingestion falls back to the code itself for
// clubs missing here.
var canonicalNames = map[string]string{
	"ARI": "Arizona Cardinals",
	"ATL": "Atlanta Falcons",
	"BAL": "Baltimore Ravens",
	"BUF": "Buffalo Bills",
	"CAR": "Carolina Panthers",
	"CHI": "Chicago Bears",
	"CIN": "Cincinnati Bengals",
	"CLE": "Cleveland Browns",
	"DAL": "Dallas Cowboys",
	"DEN": "Denver Broncos",
	"DET": "Detroit Lions",
	"GB":  "Green Bay Packers",
	"HOU": "Houston Texans",
	"IND": "Indianapolis Colts",
	"JAX": "Jacksonville Jaguars",
	"KC":  "Kansas City Chiefs",
	"LAC": "Los Angeles Chargers",
	"LAR": "Los Angeles Rams",
	"LV":  "Las Vegas Raiders",
	"MIA": "Miami Dolphins",
	"MIN": "Minnesota Vikings",
	"NE":  "New England Patriots",
	"NO":  "New Orleans Saints",
	"NYG": "New York Giants",
	"NYJ": "New York Jets",
	"PHI": "Philadelphia Eagles",
	"PIT": "Pittsburgh Steelers",
	"SEA": "Seattle Seahawks",
	"SF":  "San Francisco 49ers",
	"TB":  "Tampa Bay Buccaneers",
	"TEN": "Tennessee Titans",
	"WAS": "Washington Commanders",
}

// CanonicalName resolves the full club name for a feed abbreviation,
// falling back to the code itself when unknown.
func CanonicalName(code string) string {
	code = NormalizeCode(code)
	if name, ok := canonicalNames[code]; ok {
		return name
	}
	return code
}
