package ppu

// spritePriority resolves, per pixel of a scanline, which sprite (by OAM
// index) owns that pixel: lowest X wins, ties broken by lowest OAM index.
// See https://gbdev.io/pandocs/OAM.html#drawing-priority.
type spritePriority struct {
	owner  [Width]int
	ownerX [Width]int
}

func (s *spritePriority) clear() {
	for i := range s.owner {
		s.owner[i] = -1
		s.ownerX[i] = 0xFF
	}
}

func (s *spritePriority) tryClaim(pixelX, spriteIndex, spriteX int) {
	if pixelX < 0 || pixelX >= Width {
		return
	}

	current := s.owner[pixelX]
	switch {
	case current == -1:
	case spriteX < s.ownerX[pixelX]:
	case spriteX == s.ownerX[pixelX] && spriteIndex < current:
	default:
		return
	}

	s.owner[pixelX] = spriteIndex
	s.ownerX[pixelX] = spriteX
}

func (s *spritePriority) ownerOf(pixelX int) int {
	if pixelX < 0 || pixelX >= Width {
		return -1
	}
	return s.owner[pixelX]
}
