package service

import "sort"

// Fallback tokens substituted for omitted preference fields
const (
	FallbackUnspecified = "unspecified"
	FallbackChefsChoice = "chef's choice"
)

// DefaultTheme is used by the untyped generation endpoint
const DefaultTheme = "standard"

// ThemeField is one preference the form can send for a theme
type ThemeField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	List     bool   `json:"list,omitempty"`
	Fallback string `json:"-"`
}

// Theme describes how a themed form is turned into a prompt
type Theme struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Persona     string       `json:"-"`
	Audience    string       `json:"-"`
	Fields      []ThemeField `json:"fields"`
	Extra       []string     `json:"-"`
	Notes       []string     `json:"-"`
	MaxTokens   int          `json:"-"`
	Temperature float64      `json:"-"`
	Stream      bool         `json:"stream"`
}

func unspecified(key, label string) ThemeField {
	return ThemeField{Key: key, Label: label, Fallback: FallbackUnspecified}
}

func choice(key, label string) ThemeField {
	return ThemeField{Key: key, Label: label, Fallback: FallbackChefsChoice}
}

func choiceList(key, label string) ThemeField {
	return ThemeField{Key: key, Label: label, List: true, Fallback: FallbackChefsChoice}
}

const advisor = "You are a professional cooking advisor."

const nutritionSection = "Nutrition: estimated calories, protein, fat and carbohydrates per serving."

var themes = map[string]Theme{
	"standard": {
		Slug:     "standard",
		Name:     "Today's recipe",
		Persona:  advisor,
		Audience: "the user",
		Fields: []ThemeField{
			unspecified("mood", "Today's mood"),
			unspecified("time", "Cooking time"),
			unspecified("mealTime", "Meal time"),
			unspecified("budget", "Budget"),
			unspecified("people", "Servings"),
			{Key: "effort", Label: "Effort", List: true, Fallback: FallbackUnspecified},
			unspecified("preferredIngredients", "Ingredients to use"),
			unspecified("avoidedIngredients", "Ingredients to avoid"),
		},
		MaxTokens:   1000,
		Temperature: 0.6,
		Stream:      true,
	},
	"beauty": {
		Slug:     "beauty",
		Name:     "Beauty and anti-aging",
		Persona:  advisor,
		Audience: "someone working on beauty and anti-aging",
		Fields: []ThemeField{
			choiceList("preferences", "Beauty focus"),
			choice("skinCare", "Skin care focus"),
			choice("detox", "Detox focus"),
			choice("flavor", "Seasoning"),
			choice("cookingMethod", "Cooking method"),
			choiceList("ingredients", "Ingredients"),
			unspecified("preferredIngredients", "Other ingredients to use"),
		},
		Extra: []string{
			nutritionSection,
			"Pairing suggestions with other dishes.",
			"A short explanation of how the recipe supports beauty and anti-aging.",
		},
		Notes:       []string{"Keep the content enjoyable for beginners and intermediate cooks."},
		MaxTokens:   1300,
		Temperature: 0.6,
	},
	"bistro": {
		Slug:     "bistro",
		Name:     "Bistro dinner",
		Persona:  advisor,
		Audience: "someone who wants a bistro-style dinner at home",
		Fields: []ThemeField{
			choice("sauce", "Sauce"),
			choice("cookingStyle", "Cooking style"),
			choice("difficulty", "Difficulty"),
			choice("flavorTheme", "Flavor theme"),
			choice("platingStyle", "Plating style"),
			unspecified("preferredIngredients", "Ingredients to use"),
		},
		Extra:       []string{"Wine or drink pairing.", "Plating tips for a restaurant look."},
		MaxTokens:   1300,
		Temperature: 0.6,
	},
	"cocktail": {
		Slug:     "cocktail",
		Name:     "Signature cocktail",
		Persona:  "You are a professional bartender and cocktail advisor.",
		Audience: "someone who loves drinks",
		Fields: []ThemeField{
			choice("baseAlcohol", "Base spirit"),
			choice("flavorProfile", "Flavor profile"),
			choice("garnish", "Fruit or herbs"),
			choice("style", "Finishing style"),
			choice("strength", "Strength"),
		},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"diet": {
		Slug:     "diet",
		Name:     "Diet",
		Persona:  advisor,
		Audience: "someone on a diet",
		Fields: []ThemeField{
			choiceList("preferences", "Diet focus"),
			choice("dietFlavor", "Seasoning"),
			choice("cookingTime", "Cooking time"),
			choice("dietCookingMethods", "Cooking method"),
			choiceList("dietIngredient", "Ingredients"),
			unspecified("preferredIngredients", "Other ingredients to use"),
		},
		Extra: []string{
			nutritionSection,
			"Ideas to make the dish more filling without extra calories.",
		},
		MaxTokens:   1400,
		Temperature: 0.6,
	},
	"free": {
		Slug:     "free",
		Name:     "Today's dish",
		Persona:  advisor,
		Audience: "the user",
		Fields: []ThemeField{
			choice("mood", "Current mood"),
			choice("purpose", "Purpose of the meal"),
			choice("mealStyle", "Meal style"),
			choice("ingredientCategory", "Ingredient category"),
		},
		Extra:       []string{"Arrangement ideas."},
		MaxTokens:   1300,
		Temperature: 0.7,
	},
	"fusion": {
		Slug:     "fusion",
		Name:     "Fusion cuisine",
		Persona:  advisor,
		Audience: "someone who enjoys mixing cuisines",
		Fields: []ThemeField{
			choice("baseCuisine", "Base cuisine"),
			choice("fusionElement", "Fusion element"),
			choice("flavorProfile", "Flavor profile"),
			choice("cookingMethod", "Cooking method"),
			unspecified("preferredIngredients", "Other ingredients to use"),
		},
		Extra:       []string{"How the cuisines are combined and why they work together."},
		MaxTokens:   1300,
		Temperature: 0.6,
	},
	"japanese": {
		Slug:     "japanese",
		Name:     "Japanese home cooking",
		Persona:  advisor,
		Audience: "someone who wants authentic Japanese food",
		Fields: []ThemeField{
			choice("season", "Seasonal ingredients"),
			choice("dashi", "Dashi"),
			choice("seasoning", "Seasonings"),
			choice("cookingMethod", "Cooking method"),
			choice("platingStyle", "Plating style"),
			unspecified("preferredIngredients", "Ingredients to use"),
		},
		Extra:       []string{"Tips for making the dashi and balancing the seasoning."},
		MaxTokens:   1300,
		Temperature: 0.6,
	},
	"kids": {
		Slug:     "kids",
		Name:     "Kids' favourites",
		Persona:  advisor,
		Audience: "a parent cooking for children",
		Fields: []ThemeField{
			choiceList("preferences", "What kids will love"),
			choice("appearanceTheme", "Look and theme"),
			choice("cookingTime", "Cooking time"),
			choice("taste", "Seasoning variation"),
			choice("healthFocus", "Health focus"),
			unspecified("preferredIngredients", "Favourite ingredients"),
		},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"leftover": {
		Slug:     "leftover",
		Name:     "Fridge leftovers",
		Persona:  advisor,
		Audience: "someone using up what is in the fridge",
		Fields: []ThemeField{
			unspecified("mainIngredients", "Main ingredients"),
			unspecified("cookingTime", "Cooking time"),
			unspecified("flavor", "Seasoning preference"),
			unspecified("dishType", "Cuisine"),
			unspecified("purpose", "Purpose"),
		},
		Extra: []string{
			"Arrangement ideas, including other ingredients or remaking leftovers of the dish.",
			"Health and nutrition notes.",
		},
		Notes:       []string{"Make the most of the ingredients already in the fridge."},
		MaxTokens:   1300,
		Temperature: 0.6,
	},
	"lunchbox": {
		Slug:     "lunchbox",
		Name:     "Lunch box",
		Persona:  advisor,
		Audience: "someone packing a lunch box",
		Fields: []ThemeField{
			choiceList("preferences", "Lunch box requests"),
			choice("bentoBoxType", "Box type"),
			choice("cookingTime", "Cooking time"),
			choice("ingredientType", "Ingredient type"),
			choice("flavor", "Seasoning variation"),
			choice("storageMethod", "Storage"),
			unspecified("preferredIngredients", "Favourite ingredients"),
		},
		Extra:       []string{"How to pack and keep the food safe until lunch."},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"sns": {
		Slug:     "sns",
		Name:     "Photogenic dishes",
		Persona:  advisor,
		Audience: "someone who shares food photos",
		Fields: []ThemeField{
			choice("snsAppearance", "Look"),
			choice("snsColorTheme", "Color theme"),
			choice("snsPlatingIdea", "Plating idea"),
			choice("snsDishType", "Dish type"),
			choice("snsIngredient", "Ingredients"),
		},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"specialday": {
		Slug:     "specialday",
		Name:     "Special occasion",
		Persona:  advisor,
		Audience: "someone cooking for a special day",
		Fields: []ThemeField{
			unspecified("event", "Event"),
			unspecified("theme", "Dish theme"),
			unspecified("style", "Style"),
			unspecified("ingredient", "Ingredients to use"),
			unspecified("tableSetting", "Table setting"),
			unspecified("customNotes", "Special requests"),
		},
		Extra:       []string{"Table setting and presentation ideas for the occasion."},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"spicy": {
		Slug:     "spicy",
		Name:     "Spicy food",
		Persona:  advisor,
		Audience: "someone who loves spicy food",
		Fields: []ThemeField{
			choice("spiceLevel", "Heat level"),
			choice("spiceType", "Kind of heat"),
			choice("cookingMethod", "Cooking method"),
			choice("mainIngredient", "Main ingredient"),
			choice("flavorTheme", "Flavor theme"),
			choice("dishTexture", "Texture"),
			choice("finalTouch", "Finishing touch"),
		},
		Extra:       []string{"How to adjust the heat up or down."},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"sweet": {
		Slug:     "sweet",
		Name:     "Sweets",
		Persona:  "You are a professional pastry chef.",
		Audience: "someone who wants to bake sweets",
		Fields: []ThemeField{
			choice("sweetType", "Kind of sweet"),
			choice("sweetFlavor", "Flavor"),
			choice("sweetDecoration", "Decoration"),
			choice("sweetTexture", "Texture"),
			choice("sweetCookingMethod", "Method"),
			choice("sweetIngredient", "Ingredients"),
		},
		MaxTokens:   1000,
		Temperature: 0.6,
	},
	"western": {
		Slug:     "western",
		Name:     "Western cuisine",
		Persona:  advisor,
		Audience: "someone who wants a Western-style meal",
		Fields: []ThemeField{
			choice("sauce", "Sauce"),
			choice("cookingStyle", "Cooking style"),
			choice("cheese", "Cheese"),
			choice("cookingPreference", "Cooking process"),
			unspecified("preferredIngredients", "Ingredients to use"),
		},
		Extra:       []string{"Side dish and drink pairing."},
		MaxTokens:   1300,
		Temperature: 0.6,
	},
}

// LookupTheme returns the theme registered under slug
func LookupTheme(slug string) (Theme, bool) {
	t, ok := themes[slug]
	return t, ok
}

// Themes returns every theme sorted by slug
func Themes() []Theme {
	out := make([]Theme, 0, len(themes))
	for _, t := range themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
