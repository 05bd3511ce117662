package slot

const (
	AmmuDogFilter      = "ammu_dogfilter"
	CoupleDogFilters   = "couple_dogfilters"
	CoupleHoldingHands = "couple_holdinghands"
	CoupleForehead     = "couple_forehead"
	AmmuSunglasses     = "ammu_sunglasses"
	CoupleSelfie       = "couple_selfie"
	AmmuVeil           = "ammu_veil"
)

var defaults = []Definition{
	{ID: AmmuDogFilter, Caption: "My Cute Ammu 🐕", DefaultImage: "https://images.unsplash.com/photo-1516589178581-6cd7833ae3b2?w=600"},
	{ID: CoupleDogFilters, Caption: "Our Playful Moments 🐶", DefaultImage: "https://images.unsplash.com/photo-1519741497674-611481863552?w=600"},
	{ID: CoupleHoldingHands, Caption: "Together Forever 🤝", DefaultImage: "https://images.unsplash.com/photo-1522673607200-164d1b6ce486?w=600"},
	{ID: CoupleForehead, Caption: "Your Guardian 🛡️", DefaultImage: "https://images.unsplash.com/photo-1494774157365-9e04c6720e47?w=600"},
	{ID: AmmuSunglasses, Caption: "My Cool Baby 😎", DefaultImage: "https://images.unsplash.com/photo-1542596594-649edbc13630?w=600"},
	{ID: CoupleSelfie, Caption: "My Whole World 🌍", DefaultImage: "https://images.unsplash.com/photo-1529333166437-7750a6dd5a70?w=600"},
	{ID: AmmuVeil, Caption: "My Beautiful Wife 👰", DefaultImage: "https://images.unsplash.com/photo-1594552072238-b8a33785b261?w=600"},
}

// Default returns the registry of the keepsake page.
func Default() *Registry {
	return MustNewRegistry(defaults...)
}
