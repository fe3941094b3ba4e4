package enum

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

// Sector groups treasuries by tenor for bucketed risk.
type Sector uint8

const (
	_sector_beg Sector = iota
	SectorFrontEnd
	SectorBelly
	SectorLongEnd
	_sector_end
)

func (s Sector) IsAvailable() bool {
	return s > _sector_beg && s < _sector_end
}

func (s Sector) String() string {
	switch s {
	case SectorFrontEnd:
		return "FRONT_END"
	case SectorBelly:
		return "BELLY"
	case SectorLongEnd:
		return "LONG_END"
	default:
		return "UNKNOWN"
	}
}

func ParseSector(s string) (Sector, error) {
	for sec := _sector_beg + 1; sec < _sector_end; sec++ {
		if sec.String() == s {
			return sec, nil
		}
	}
	return 0, errors.Wrapf(exception.ErrInvalidArgument, "unknown sector %q", s)
}

// Sectors lists every sector in curve order.
func Sectors() []Sector {
	return []Sector{SectorFrontEnd, SectorBelly, SectorLongEnd}
}
