package colornames

// catalogEntry pairs a human color name with its sRGB hex code.
type catalogEntry struct {
	name string
	hex  string
}

// catalog is the fixed reference table the namer is built from. Entry
// order matters: nearest-neighbor ties resolve to the earliest entry.
var catalog = []catalogEntry{
	{"black", "000000"},
	{"white", "ffffff"},
	{"red", "ff0000"},
	{"green", "00ff00"},
	{"blue", "0000ff"},
	{"yellow", "ffff00"},
	{"cyan", "00ffff"},
	{"magenta", "ff00ff"},
	{"gray", "808080"},
	{"silver", "c0c0c0"},
	{"maroon", "800000"},
	{"olive", "808000"},
	{"dark green", "008000"},
	{"teal", "008080"},
	{"navy", "000080"},
	{"purple", "800080"},
	{"orange", "ffa500"},
	{"pink", "ffc0cb"},
	{"brown", "a52a2a"},
	{"gold", "ffd700"},
	{"beige", "f5f5dc"},
	{"ivory", "fffff0"},
	{"khaki", "f0e68c"},
	{"lavender", "e6e6fa"},
	{"coral", "ff7f50"},
	{"salmon", "fa8072"},
	{"crimson", "dc143c"},
	{"tomato", "ff6347"},
	{"chocolate", "d2691e"},
	{"peru", "cd853f"},
	{"tan", "d2b48c"},
	{"sienna", "a0522d"},
	{"turquoise", "40e0d0"},
	{"sky blue", "87ceeb"},
	{"steel blue", "4682b4"},
	{"royal blue", "4169e1"},
	{"indigo", "4b0082"},
	{"violet", "ee82ee"},
	{"orchid", "da70d6"},
	{"plum", "dda0dd"},
	{"slate gray", "708090"},
	{"dim gray", "696969"},
	{"light gray", "d3d3d3"},
	{"forest green", "228b22"},
	{"lime green", "32cd32"},
	{"sea green", "2e8b57"},
	{"olive drab", "6b8e23"},
	{"dark khaki", "bdb76b"},
	{"light yellow", "ffffe0"},
	{"mint cream", "f5fffa"},
	{"wheat", "f5deb3"},
	{"peach puff", "ffdab9"},
	{"hot pink", "ff69b4"},
	{"deep pink", "ff1493"},
	{"firebrick", "b22222"},
	{"dark red", "8b0000"},
	{"midnight blue", "191970"},
	{"cadet blue", "5f9ea0"},
	{"powder blue", "b0e0e6"},
	{"aquamarine", "7fffd4"},
	{"spring green", "00ff7f"},
	{"chartreuse", "7fff00"},
	{"dark orange", "ff8c00"},
	{"light coral", "f08080"},
	{"rosy brown", "bc8f8f"},
	{"saddle brown", "8b4513"},
	{"dark slate gray", "2f4f4f"},
	{"gainsboro", "dcdcdc"},
	{"snow", "fffafa"},
}
