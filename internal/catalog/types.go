package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory    = errors.New("unknown skin tone category")
	ErrUnknownProductType = errors.New("unknown product type")
)

// Category is a coarse skin tone bucket.
type Category string

const (
	CategoryFair   Category = "fair"
	CategoryMedium Category = "medium"
	CategoryDark   Category = "dark"
)

// Categories lists every category from lightest to darkest.
var Categories = []Category{CategoryFair, CategoryMedium, CategoryDark}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFair, CategoryMedium, CategoryDark:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// Label is the capitalised form shown to users.
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ProductType identifies what kind of cosmetic a product is.
type ProductType string

const (
	TypeFoundation    ProductType = "foundation"
	TypeConcealer     ProductType = "concealer"
	TypePowder        ProductType = "powder"
	TypeBlush         ProductType = "blush"
	TypeBronzer       ProductType = "bronzer"
	TypeHighlighter   ProductType = "highlighter"
	TypeLipstick      ProductType = "lipstick"
	TypeLipGloss      ProductType = "lip_gloss"
	TypeLipLiner      ProductType = "lip_liner"
	TypeEyeshadow     ProductType = "eyeshadow"
	TypeEyeliner      ProductType = "eyeliner"
	TypeMascara       ProductType = "mascara"
	TypeEyebrowPencil ProductType = "eyebrow_pencil"
	TypeEyebrowGel    ProductType = "eyebrow_gel"
)

// Family groups product types under a display header.
type Family string

const (
	FamilyFace  Family = "Face Products"
	FamilyCheek Family = "Cheek Products"
	FamilyLip   Family = "Lip Products"
	FamilyEye   Family = "Eye Products"
	FamilyOther Family = "Other Products"
)

var typeFamilies = map[ProductType]Family{
	TypeFoundation:    FamilyFace,
	TypeConcealer:     FamilyFace,
	TypePowder:        FamilyFace,
	TypeBlush:         FamilyCheek,
	TypeBronzer:       FamilyCheek,
	TypeHighlighter:   FamilyCheek,
	TypeLipstick:      FamilyLip,
	TypeLipGloss:      FamilyLip,
	TypeLipLiner:      FamilyLip,
	TypeEyeshadow:     FamilyEye,
	TypeEyeliner:      FamilyEye,
	TypeMascara:       FamilyEye,
	TypeEyebrowPencil: FamilyEye,
	TypeEyebrowGel:    FamilyEye,
}

// ParseProductType accepts type names in any case, with spaces or dashes
// in place of underscores ("Lip Gloss", "lip-gloss", "lip_gloss").
func ParseProductType(s string) (ProductType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	t := ProductType(normalized)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProductType, s)
	}
	return t, nil
}

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	_, ok := typeFamilies[t]
	return ok
}

// Family returns the display family of t.
func (t ProductType) Family() Family {
	if f, ok := typeFamilies[t]; ok {
		return f
	}
	return FamilyOther
}

// Label is the human readable type name, e.g. "Lip Gloss".
func (t ProductType) Label() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (t ProductType) String() string { return string(t) }

// Product is one recommendable catalog entry.
type Product struct {
	Brand    string      `json:"brand"`
	Type     ProductType `json:"type"`
	Name     string      `json:"name"`
	Category Category    `json:"category"`
	Shade    string      `json:"shade"`
}
