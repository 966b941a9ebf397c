package cape

// OrphanSubjects are subject codes with evaluations that no entry of the department dropdown returns
// (college writing programs, interdisciplinary minors, cross-listed seminars). They are searched by
// course text after the department pass. Overlap with a department is harmless, duplicates are dropped.
//
// Changing this list changes what a run collects, keep it in version control.
var OrphanSubjects = []string{
	"AAS",
	"AIP",
	"AWP",
	"CCS",
	"CGS",
	"CHIN",
	"CLAS",
	"CONT",
	"COSF",
	"CSS",
	"DSGN",
	"EDS",
	"ENVR",
	"ERC",
	"ESYS",
	"FILM",
	"FMPH",
	"GLBH",
	"GSS",
	"HDS",
	"HMNR",
	"HUM",
	"INTL",
	"JAPN",
	"JWSP",
	"LATI",
	"LIHL",
	"MCWP",
	"MMW",
	"RELI",
	"REV",
	"SIO",
	"STPA",
	"SXTH",
	"TMC",
	"TWS",
	"USP",
	"WARR",
	"WCWP",
}
