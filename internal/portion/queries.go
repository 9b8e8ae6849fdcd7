package portion

import "nutrition/internal/fdc"

// DefaultQueries samples the major food groups.
var DefaultQueries = []string{
	// proteins
	"chicken", "beef", "pork", "fish", "salmon", "turkey", "eggs",
	"tofu", "tempeh", "beans", "lentils",
	// dairy
	"milk", "cheese", "yogurt", "butter", "cream",
	// grains
	"rice", "pasta", "bread", "oats", "quinoa", "cereal",
	// vegetables
	"broccoli", "carrots", "spinach", "tomatoes", "lettuce",
	"potatoes", "onions", "peppers", "mushrooms",
	// fruits
	"apple", "banana", "orange", "berries", "grapes", "melon",
	// beverages
	"coffee", "tea", "juice", "soda", "water",
	// oils and fats
	"olive oil", "coconut oil", "avocado",
	// nuts and seeds
	"almonds", "walnuts", "peanuts", "chia seeds",
	// condiments
	"ketchup", "mustard", "soy sauce", "vinegar", "salad dressing",
	// snacks and sweets
	"chips", "crackers", "cookies", "chocolate", "ice cream",
	// prepared foods
	"soup", "pizza", "sandwich", "burrito",
}

// DefaultDataTypes restricts searches to every FDC data set.
var DefaultDataTypes = []string{fdc.Foundation, fdc.SRLegacy, fdc.Survey, fdc.Branded}
