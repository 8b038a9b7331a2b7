package memory

import "testing"

func flatROM(pages int, fill byte) []byte {
	data := make([]byte, pages*PageSize)
	for i := range data {
		data[i] = fill
	}
	return data
}

func TestLoadHuCardFlatImage(t *testing.T) {
	cart, err := LoadHuCard(flatROM(4, 0xAB))
	if err != nil {
		t.Fatalf("LoadHuCard: %v", err)
	}
	if cart.RomPages() != 4 {
		t.Fatalf("RomPages = %d, want 4", cart.RomPages())
	}
	if cart.CartRamPages() != 0 {
		t.Fatalf("flat image should have no cart RAM, got %d pages", cart.CartRamPages())
	}
}

func TestLoadHuCardTooSmallErrors(t *testing.T) {
	_, err := LoadHuCard(make([]byte, PageSize-1))
	if err == nil {
		t.Fatal("expected an error for an image smaller than one page")
	}
}

func TestLoadHuCardPadsPartialFinalPage(t *testing.T) {
	data := make([]byte, PageSize+100)
	cart, err := LoadHuCard(data)
	if err != nil {
		t.Fatalf("LoadHuCard: %v", err)
	}
	if len(cart.ROM)%PageSize != 0 {
		t.Fatalf("ROM length %d is not a whole number of pages", len(cart.ROM))
	}
	if cart.RomPages() != 2 {
		t.Fatalf("RomPages = %d, want 2 (padded)", cart.RomPages())
	}
}

func header(romPages int, flags byte) []byte {
	h := make([]byte, headerSize)
	h[offsetRomPagesLo] = byte(romPages)
	h[offsetRomPagesHi] = byte(romPages >> 8)
	h[offsetFlags] = flags
	h[offsetMagicLo] = headerMagicLo
	h[offsetMagicHi] = headerMagicHi
	h[offsetType] = headerTypePCE
	return h
}

func TestLoadHuCardWithHeaderAndBackupRAM(t *testing.T) {
	body := flatROM(2, 0x11)
	data := append(header(2, 0x80), body...)

	cart, err := LoadHuCard(data)
	if err != nil {
		t.Fatalf("LoadHuCard: %v", err)
	}
	if cart.RomPages() != 2 {
		t.Fatalf("RomPages = %d, want 2", cart.RomPages())
	}
	if len(cart.CartRAM) != 2*1024 {
		t.Fatalf("CartRAM size = %d, want 2048 (flags 0x80)", len(cart.CartRAM))
	}
	if cart.ROM[0] != 0x11 {
		t.Fatalf("ROM body not sliced past header, first byte = %#x", cart.ROM[0])
	}
}

func TestLoadHuCardHeaderDeclaresTooManyPagesErrors(t *testing.T) {
	body := flatROM(1, 0)
	data := append(header(4, 0), body...)
	_, err := LoadHuCard(data)
	if err == nil {
		t.Fatal("expected an error when the header overclaims the image size")
	}
}

func TestLoadHuCardMagicWithoutTypeErrors(t *testing.T) {
	data := make([]byte, PageSize)
	data[offsetMagicLo] = headerMagicLo
	data[offsetMagicHi] = headerMagicHi
	_, err := LoadHuCard(data)
	if err == nil {
		t.Fatal("expected an error for a header whose magic is present but whose type byte does not match")
	}
}

func TestBackupSizeFromFlags(t *testing.T) {
	cases := map[byte]int{0x80: 2048, 0x84: 16384, 0x00: 0, 0xFF: 0}
	for flags, want := range cases {
		if got := backupSizeFromFlags(flags); got != want {
			t.Errorf("backupSizeFromFlags(%#x) = %d, want %d", flags, got, want)
		}
	}
}
