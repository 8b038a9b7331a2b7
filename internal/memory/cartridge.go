package memory

import "fmt"

// Header layout, byte offsets 0-10: a 16-bit little-endian rom_pages
// count, a flags byte (backup-RAM size code), then a 2-byte magic
// number and a 1-byte cart-type code starting at offset 8. The header
// is padded out to headerSize so the ROM payload starts on a clean
// boundary; nothing beyond offset 10 is interpreted.
const (
	headerSize = 16

	headerMagicLo = 0x48
	headerMagicHi = 0x43

	headerTypePCE = 0x01

	offsetRomPagesLo = 0
	offsetRomPagesHi = 1
	offsetFlags      = 2
	offsetMagicLo    = 8
	offsetMagicHi    = 9
	offsetType       = 10
)

// Cartridge holds a loaded HuCard image: its ROM pages and, if the
// header declares one, a backup-RAM-sized cart RAM region.
type Cartridge struct {
	ROM     []byte // exact multiple of PageSize
	CartRAM []byte // optional, sized per header flags
}

// backupSizeFromFlags maps the header's backup-RAM-size code to a byte
// count. Unrecognized codes mean no cart RAM.
func backupSizeFromFlags(flags byte) int {
	switch flags {
	case 0x80:
		return 2 * 1024
	case 0x84:
		return 16 * 1024
	default:
		return 0
	}
}

// LoadHuCard parses a raw or headered ROM image. A header is
// recognized when its magic word at offset 8-9 and type byte at
// offset 10 match; in that case rom_pages (little-endian u16 at offset
// 0) and the backup-RAM flags byte (offset 2) govern how the
// remainder is sliced. Without a recognized header, the whole file is
// treated as a flat ROM image.
func LoadHuCard(data []byte) (*Cartridge, error) {
	if len(data) < PageSize {
		return nil, fmt.Errorf("load hucard: image too small (%d bytes)", len(data))
	}

	if len(data) > headerSize && hasHeader(data) {
		body := data[headerSize:]
		pages := int(data[offsetRomPagesLo]) | int(data[offsetRomPagesHi])<<8
		flags := data[offsetFlags]
		wantLen := pages * PageSize
		if pages > 0 && wantLen > len(body) {
			return nil, fmt.Errorf("load hucard: header declares %d pages (%d bytes) but image has %d bytes", pages, wantLen, len(body))
		}
		rom := body
		if pages > 0 {
			rom = body[:wantLen]
		}
		cart := &Cartridge{ROM: padToPage(rom)}
		if n := backupSizeFromFlags(flags); n > 0 {
			cart.CartRAM = make([]byte, n)
		}
		return cart, nil
	}

	if looksLikeHeader(data) {
		return nil, fmt.Errorf("load hucard: invalid header: magic present but type byte does not match")
	}

	return &Cartridge{ROM: padToPage(data)}, nil
}

func hasHeader(data []byte) bool {
	return len(data) > offsetType &&
		data[offsetMagicLo] == headerMagicLo && data[offsetMagicHi] == headerMagicHi &&
		data[offsetType] == headerTypePCE
}

func looksLikeHeader(data []byte) bool {
	return len(data) > offsetMagicHi &&
		data[offsetMagicLo] == headerMagicLo && data[offsetMagicHi] == headerMagicHi
}

// padToPage rounds data up to a whole number of PageSize-sized pages,
// zero-filling the remainder, so MPR bank math never sees a partial
// final page.
func padToPage(data []byte) []byte {
	if len(data)%PageSize == 0 {
		return data
	}
	padded := make([]byte, ((len(data)/PageSize)+1)*PageSize)
	copy(padded, data)
	return padded
}

// RomPages returns the number of 8 KiB pages backing the ROM image.
func (c *Cartridge) RomPages() int {
	return len(c.ROM) / PageSize
}

// CartRamPages returns the number of 8 KiB pages backing cart RAM (0 if
// this cartridge has none).
func (c *Cartridge) CartRamPages() int {
	return len(c.CartRAM) / PageSize
}
