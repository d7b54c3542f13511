package course

// allCourseCodes enumerates the degree-level course-number prefixes the
// year-wide sweep queries one at a time: bachelor, master, doctoral and
// night division. The portal treats courseno as a prefix match, so one
// query per prefix covers the whole catalog for a year.
var allCourseCodes = []string{"U", "M", "D", "N"}
