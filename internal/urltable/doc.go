// Package urltable loads the static resource-name -> URL mapping from its
// YAML file and answers lookups by name, by sha1 and by hash identifier.
// A Table is built once by Load (share links normalized, hash index derived)
// and then passed by pointer to the fetch layers; it is never reloaded
// behind the caller's back.
package urltable
