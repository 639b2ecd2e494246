package domain

// Companies is the fixed six-company catalog. Immutable for the process
// lifetime; catalog order is also the display order clients rely on.
var Companies = []Company{
	{Name: "Giraffe Beer", Color: "orange", Count: 5},
	{Name: "Bowwow Gaming", Color: "blue", Count: 6},
	{Name: "Flamingo Soft", Color: "pink", Count: 7},
	{Name: "Octo Coffee", Color: "brown", Count: 8},
	{Name: "Hippo Electronics", Color: "green", Count: 9},
	{Name: "Elephant Moon Transfer", Color: "red", Count: 10},
}

const (
	// MinPlayers is the floor below which a game cannot run.
	MinPlayers = 2
	// MaxPlayers is the room capacity.
	MaxPlayers = 7
	// RemovedDeckCards is how many cards are discarded unseen at deck build.
	RemovedDeckCards = 5
	// StartingHandSize is dealt to every player at game start.
	StartingHandSize = 3
	// StartingChips1 is every player's opening chips1 balance.
	StartingChips1 = 10
)

// CompanyByName looks up a catalog entry.
func CompanyByName(name string) (Company, bool) {
	for _, c := range Companies {
		if c.Name == name {
			return c, true
		}
	}
	return Company{}, false
}

// TotalCompanyCards is the catalog card total before the build-time removal.
func TotalCompanyCards() int {
	total := 0
	for _, c := range Companies {
		total += c.Count
	}
	return total
}
