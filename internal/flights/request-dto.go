package flights

// SearchRequest is the flight search request payload
type SearchRequest struct {
	Origin        string  `json:"origin" binding:"required,len=3"`
	Destination   string  `json:"destination" binding:"required,len=3"`
	DepartureDate string  `json:"departure_date" binding:"required"`
	ReturnDate    string  `json:"return_date,omitempty"`
	TripType      string  `json:"trip_type" binding:"required,oneof=ONE_WAY ROUND_TRIP"`
	Adults        int     `json:"adults" binding:"required,min=1,max=9"`
	Children      int     `json:"children" binding:"min=0,max=9"`
	Infants       int     `json:"infants" binding:"min=0,max=9"`
	CabinClass    string  `json:"cabin_class,omitempty" binding:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	NonStop       bool    `json:"non_stop,omitempty"`
	MaxPrice      float64 `json:"max_price,omitempty" binding:"omitempty,gt=0"`
}

// ToCriteria converts the request payload into immutable search criteria
func (r SearchRequest) ToCriteria() SearchCriteria {
	return SearchCriteria{
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: r.DepartureDate,
		ReturnDate:    r.ReturnDate,
		TripType:      TripType(r.TripType),
		Adults:        r.Adults,
		Children:      r.Children,
		Infants:       r.Infants,
		CabinClass:    r.CabinClass,
		NonStop:       r.NonStop,
		MaxPrice:      r.MaxPrice,
	}
}

// FilterRequest is the filter/sort request payload: the original search
// criteria plus the user's filter state
type FilterRequest struct {
	Search SearchRequest `json:"search" binding:"required"`
	Filter struct {
		MaxPrice float64  `json:"max_price,omitempty" binding:"omitempty,gt=0"`
		Stops    []int    `json:"stops,omitempty"`
		Carriers []string `json:"carriers,omitempty"`
		SortBy   string   `json:"sort_by,omitempty" binding:"omitempty,oneof=price duration"`
	} `json:"filter"`
}

// ToFilterState converts the request's filter block into a FilterState
func (r FilterRequest) ToFilterState() FilterState {
	sortBy := SortByPrice
	if r.Filter.SortBy != "" {
		sortBy = SortKey(r.Filter.SortBy)
	}
	return FilterState{
		MaxPrice: r.Filter.MaxPrice,
		Stops:    r.Filter.Stops,
		Carriers: r.Filter.Carriers,
		SortBy:   sortBy,
	}
}
