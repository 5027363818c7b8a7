// Package citescoop extracts citations from the wikipedia xml dump format.
//
// The dumps are available from the wikimedia group here:
//    http://dumps.wikimedia.org/
//
// Feed a dump (plain or bzip2-compressed) to one of the extractors and
// you get back, per page, the set of distinct citations that ever
// appeared in it, each annotated with the revision that introduced it
// and, where applicable, the revision that removed it, along with the
// referenced revisions themselves.
//
// See the programs under tools/ for an idea of how I've made use of
// these things.
package citescoop
