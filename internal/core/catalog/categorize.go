package catalog

import "strings"

type keywordGroup struct {
	category string
	keywords []string
}

// 依序比對，先命中者優先
var categoryKeywords = []keywordGroup{
	{CategoryProtein, []string{"chicken", "beef", "pork", "lamb", "turkey", "fish", "salmon", "tuna", "shrimp", "egg", "tofu", "beans", "lentils"}},
	{CategoryOil, []string{"olive oil", "vegetable oil", "coconut oil", "canola oil", "sesame oil", "avocado oil", "sunflower oil", "oil"}},
	{CategorySpice, []string{"salt", "garlic powder", "onion powder", "paprika", "cumin", "cinnamon", "nutmeg", "chili powder", "black pepper"}},
	{CategoryHerb, []string{"oregano", "basil", "thyme", "rosemary", "sage", "parsley", "cilantro", "dill", "mint"}},
	{CategoryDairy, []string{"milk", "butter", "cheese", "cream", "yogurt", "ricotta", "mozzarella", "cheddar", "parmesan"}},
	{CategoryVegetable, []string{"onion", "garlic", "carrot", "celery", "tomato", "potato", "pepper", "broccoli", "spinach", "lettuce", "cucumber", "mushroom", "zucchini"}},
	{CategoryFruit, []string{"apple", "banana", "orange", "lemon", "lime", "berry", "grape", "cherry", "peach", "pear", "avocado"}},
	{CategoryGrain, []string{"flour", "rice", "pasta", "bread", "oats", "barley", "wheat", "quinoa", "couscous", "bulgur", "cornmeal", "semolina"}},
	{CategorySweetener, []string{"sugar", "honey", "maple syrup", "corn syrup", "agave", "stevia", "molasses"}},
	{CategoryCondiment, []string{"ketchup", "mustard", "mayonnaise", "soy sauce", "vinegar", "hot sauce", "worcestershire", "bbq sauce"}},
	{CategoryBaking, []string{"baking powder", "baking soda", "yeast", "vanilla", "cocoa", "cornstarch"}},
}

// AutoCategorize 依名稱關鍵字推測分類，無法判斷時回傳 other
func AutoCategorize(name string) string {
	lower := strings.ToLower(name)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}
	return CategoryOther
}

type seedGroup struct {
	category string
	names    []string
}

// 初次使用時建立的常用食材
var commonIngredients = []seedGroup{
	{CategorySpice, []string{"salt", "black pepper", "garlic powder", "onion powder", "paprika"}},
	{CategoryOil, []string{"olive oil", "vegetable oil"}},
	{CategoryDairy, []string{"butter", "milk", "cheese"}},
	{CategoryBaking, []string{"baking powder", "vanilla extract"}},
	{CategoryGrain, []string{"flour", "rice", "pasta"}},
	{CategorySweetener, []string{"sugar"}},
	{CategoryProtein, []string{"eggs", "chicken breast", "ground beef"}},
	{CategoryVegetable, []string{"onion", "garlic"}},
}
