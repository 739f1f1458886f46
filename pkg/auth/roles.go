package auth

const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

const (
	RightBook              = "book"
	RightGetBookings       = "getBookings"
	RightManageBookings    = "manageBookings"
	RightGetParkingLots    = "getParkingLots"
	RightManageParkingLots = "manageParkingLots"
	RightGetRatings        = "getRatings"
	RightAddRatings        = "addRatings"
	RightManageRatings     = "manageRatings"
	RightGetVehicles       = "getVehicles"
	RightManageVehicles    = "manageVehicles"
	RightManageUsers       = "manageUsers"
)

var roleRights = map[string][]string{
	RoleUser: {
		RightBook,
		RightGetBookings,
		RightManageBookings,
		RightGetParkingLots,
		RightGetRatings,
		RightAddRatings,
		RightGetVehicles,
		RightManageVehicles,
	},
	RoleVendor: {
		RightGetParkingLots,
		RightManageParkingLots,
		RightGetBookings,
		RightGetRatings,
		RightGetVehicles,
		RightManageVehicles,
	},
	RoleAdmin: {
		RightBook,
		RightGetBookings,
		RightManageBookings,
		RightGetParkingLots,
		RightManageParkingLots,
		RightGetRatings,
		RightAddRatings,
		RightManageRatings,
		RightGetVehicles,
		RightManageVehicles,
		RightManageUsers,
	},
}

func IsValidRole(role string) bool {
	_, ok := roleRights[role]
	return ok
}

func HasRight(role, right string) bool {
	for _, r := range roleRights[role] {
		if r == right {
			return true
		}
	}
	return false
}
