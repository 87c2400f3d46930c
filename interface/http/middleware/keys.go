package middleware

// ButtonKey is the gin context key handlers set to the resolved button name.
const ButtonKey = "button"
