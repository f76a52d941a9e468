package mysql

const restaurantCols = `id, restaurant_id, name, cuisine, borough, phone, website, price_range,
  building, street, zipcode, lon, lat, created_at, updated_at`

const insertRestaurantSQL = `
INSERT INTO restaurants
  (restaurant_id, name, cuisine, borough, phone, website, price_range,
   building, street, zipcode, lon, lat, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertGradeSQL = `
INSERT INTO grades (restaurant_pk, position, graded_at, letter, score)
VALUES (?, ?, ?, ?, ?)
`

const insertCommentSQL = `
INSERT INTO comments (comment_id, restaurant_pk, position, commented_at, body, user_id, rating)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// Append statements compute the next position from the existing rows;
// MySQL allows INSERT ... SELECT from the target table.
const appendGradeSQL = `
INSERT INTO grades (restaurant_pk, position, graded_at, letter, score)
SELECT ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?
FROM grades WHERE restaurant_pk = ?
`

const appendCommentSQL = `
INSERT INTO comments (comment_id, restaurant_pk, position, commented_at, body, user_id, rating)
SELECT ?, ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?, ?
FROM comments WHERE restaurant_pk = ?
`

const getRestaurantSQL = `
SELECT ` + restaurantCols + `
FROM restaurants
WHERE id = ?
`

const lockRestaurantSQL = `SELECT id FROM restaurants WHERE id = ? FOR UPDATE`

const touchRestaurantSQL = `UPDATE restaurants SET updated_at = ? WHERE id = ?`

const deleteRestaurantSQL = `DELETE FROM restaurants WHERE id = ?`

// Children are fetched per page of parents with an IN clause, ordered by
// position to preserve append order.
const listGradesPrefix = `
SELECT restaurant_pk, graded_at, letter, score
FROM grades
WHERE restaurant_pk IN `

const listCommentsPrefix = `
SELECT comment_id, restaurant_pk, commented_at, body, user_id, rating
FROM comments
WHERE restaurant_pk IN `

const childOrderSuffix = ` ORDER BY restaurant_pk, position`

// Natural-language relevance search over the FULLTEXT index on name.
const searchRestaurantsSQL = `
SELECT ` + restaurantCols + `,
  MATCH(name) AGAINST (? IN NATURAL LANGUAGE MODE) AS relevance
FROM restaurants
WHERE MATCH(name) AGAINST (? IN NATURAL LANGUAGE MODE)
ORDER BY relevance DESC
`
