package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cinelist/internal/types"
)

// DefaultListNames are guaranteed to exist per user and are protected from
// rename and delete.
var DefaultListNames = []string{"Favoritos", "Interés"}

func isDefaultListName(name string) bool {
	for _, n := range DefaultListNames {
		if n == name {
			return true
		}
	}
	return false
}

// EnsureDefaultLists lazily creates the two default lists for a user. It is
// idempotent; the (user_id, name) unique index absorbs concurrent calls.
func EnsureDefaultLists(db *sql.DB, userID int) error {
	now := time.Now()
	for _, name := range DefaultListNames {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO lists (user_id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, userID, name, now, now)
		if err != nil {
			return fmt.Errorf("failed to ensure default list %q: %w", name, err)
		}
	}
	return nil
}

// CreateList creates an empty list owned by userID. The name is trimmed; a
// (owner, name) collision surfaces as ErrConflict.
func CreateList(db *sql.DB, userID int, name string) (*types.List, error) {
	name = strings.TrimSpace(name)
	now := time.Now()
	result, err := db.Exec(`
		INSERT INTO lists (user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, userID, name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	listID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get list ID: %w", err)
	}

	return &types.List{
		ID:      int(listID),
		OwnerID: userID,
		Name:    name,
		Default: isDefaultListName(name),
		Items:   []types.ListItem{},
		Created: now,
		Updated: now,
	}, nil
}

// GetListsByOwner returns all lists owned by userID, newest first, with item
// counts. Default lists are ensured as a side effect.
func GetListsByOwner(db *sql.DB, userID int) ([]types.List, error) {
	if err := EnsureDefaultLists(db, userID); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT l.id, l.user_id, l.name, l.created_at, l.updated_at,
		       COUNT(li.id) as item_count
		FROM lists l
		LEFT JOIN list_items li ON l.id = li.list_id
		WHERE l.user_id = ?
		GROUP BY l.id, l.user_id, l.name, l.created_at, l.updated_at
		ORDER BY l.created_at DESC, l.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	lists := []types.List{}
	for rows.Next() {
		var l types.List
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Created, &l.Updated, &l.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		l.Default = isDefaultListName(l.Name)
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// getList fetches a list row without any visibility check.
func getList(db *sql.DB, listID int) (*types.List, error) {
	var l types.List
	err := db.QueryRow(`
		SELECT id, user_id, name, created_at, updated_at
		FROM lists
		WHERE id = ?
	`, listID).Scan(&l.ID, &l.OwnerID, &l.Name, &l.Created, &l.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query list: %w", err)
	}
	l.Default = isDefaultListName(l.Name)
	return &l, nil
}

func loadItems(db *sql.DB, list *types.List) error {
	rows, err := db.Query(`
		SELECT tmdb_id, title, poster_url, year, genre, media_type, added_at
		FROM list_items
		WHERE list_id = ?
		ORDER BY added_at DESC, id DESC
	`, list.ID)
	if err != nil {
		return fmt.Errorf("failed to query list items: %w", err)
	}
	defer rows.Close()

	items := []types.ListItem{}
	for rows.Next() {
		var it types.ListItem
		if err := rows.Scan(&it.TMDBID, &it.Title, &it.PosterURL, &it.Year, &it.Genre, &it.MediaType, &it.Added); err != nil {
			return fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, it)
	}
	list.Items = items
	list.ItemCount = len(items)
	return rows.Err()
}

func loadShares(db *sql.DB, list *types.List) error {
	rows, err := db.Query(`
		SELECT user_id FROM list_shares WHERE list_id = ?
	`, list.ID)
	if err != nil {
		return fmt.Errorf("failed to query list shares: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		ids = append(ids, id)
	}
	list.SharedIDs = ids
	return rows.Err()
}

// GetListForViewer returns the list with its items if viewerID is the owner
// or a sharee. Anyone else gets ErrNotFound: existence and visibility are
// collapsed so non-viewers cannot probe for lists.
func GetListForViewer(db *sql.DB, listID, viewerID int) (*types.List, error) {
	list, err := getList(db, listID)
	if err != nil {
		return nil, err
	}

	if list.OwnerID != viewerID {
		shared := false
		err := db.QueryRow(`
			SELECT id FROM list_shares WHERE list_id = ? AND user_id = ?
		`, listID, viewerID).Scan(new(int))
		if err == nil {
			shared = true
		} else if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to check list share: %w", err)
		}
		if !shared {
			return nil, ErrNotFound
		}
	}

	if err := loadItems(db, list); err != nil {
		return nil, err
	}
	if err := loadShares(db, list); err != nil {
		return nil, err
	}
	return list, nil
}

// getOwnedList fetches a list and enforces ownership: ErrNotFound if absent,
// ErrForbidden if owned by someone else.
func getOwnedList(db *sql.DB, listID, userID int) (*types.List, error) {
	list, err := getList(db, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != userID {
		return nil, ErrForbidden
	}
	return list, nil
}

func touchList(db *sql.DB, listID int) error {
	_, err := db.Exec(`UPDATE lists SET updated_at = ? WHERE id = ?`, time.Now(), listID)
	if err != nil {
		return fmt.Errorf("failed to touch list: %w", err)
	}
	return nil
}

// UpdateListName renames an owned, non-default list. A name collision with
// another of the owner's lists surfaces as ErrConflict.
func UpdateListName(db *sql.DB, listID, userID int, name string) (*types.List, error) {
	list, err := getOwnedList(db, listID, userID)
	if err != nil {
		return nil, err
	}
	if list.Default {
		return nil, ErrDefaultList
	}

	name = strings.TrimSpace(name)
	_, err = db.Exec(`
		UPDATE lists SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now(), listID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	return GetListForViewer(db, listID, userID)
}

// DeleteList removes an owned, non-default list and everything embedded in it.
func DeleteList(db *sql.DB, listID, userID int) error {
	list, err := getOwnedList(db, listID, userID)
	if err != nil {
		return err
	}
	if list.Default {
		return ErrDefaultList
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM list_shares WHERE list_id = ?", listID); err != nil {
		return fmt.Errorf("failed to delete list shares: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM list_items WHERE list_id = ?", listID); err != nil {
		return fmt.Errorf("failed to delete list items: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM lists WHERE id = ?", listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	return tx.Commit()
}

// AddItem adds a catalog item to an owned list. Re-adding an item with the
// same external id is a no-op.
func AddItem(db *sql.DB, listID, userID int, item types.ListItem) (*types.List, error) {
	if _, err := getOwnedList(db, listID, userID); err != nil {
		return nil, err
	}

	_, err := db.Exec(`
		INSERT OR IGNORE INTO list_items (list_id, tmdb_id, title, poster_url, year, genre, media_type, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, listID, item.TMDBID, item.Title, item.PosterURL, item.Year, item.Genre, item.MediaType, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to add item to list: %w", err)
	}

	if err := touchList(db, listID); err != nil {
		return nil, err
	}
	return GetListForViewer(db, listID, userID)
}

// RemoveItem removes the item with the given external id from an owned list.
// Removing an absent item is a no-op.
func RemoveItem(db *sql.DB, listID, userID, tmdbID int) (*types.List, error) {
	if _, err := getOwnedList(db, listID, userID); err != nil {
		return nil, err
	}

	_, err := db.Exec(`
		DELETE FROM list_items WHERE list_id = ? AND tmdb_id = ?
	`, listID, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove item from list: %w", err)
	}

	if err := touchList(db, listID); err != nil {
		return nil, err
	}
	return GetListForViewer(db, listID, userID)
}

// ShareList grants friendID read access to an owned list. The target must be
// in the owner's friend set; sharing twice is a no-op.
func ShareList(db *sql.DB, listID, userID, friendID int) (*types.List, error) {
	if _, err := getOwnedList(db, listID, userID); err != nil {
		return nil, err
	}

	isFriend, err := IsFriend(db, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, ErrNotFriend
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO list_shares (list_id, user_id, created_at)
		VALUES (?, ?, ?)
	`, listID, friendID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to share list: %w", err)
	}

	if err := touchList(db, listID); err != nil {
		return nil, err
	}
	return GetListForViewer(db, listID, userID)
}

// GetListsSharedWith returns all lists shared with userID, newest-updated
// first, with the owner resolved for display.
func GetListsSharedWith(db *sql.DB, userID int) ([]types.List, error) {
	rows, err := db.Query(`
		SELECT l.id, l.user_id, u.name, l.name, l.created_at, l.updated_at,
		       COUNT(li.id) as item_count
		FROM list_shares ls
		JOIN lists l ON ls.list_id = l.id
		JOIN users u ON l.user_id = u.id
		LEFT JOIN list_items li ON l.id = li.list_id
		WHERE ls.user_id = ?
		GROUP BY l.id, l.user_id, u.name, l.name, l.created_at, l.updated_at
		ORDER BY l.updated_at DESC, l.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared lists: %w", err)
	}
	defer rows.Close()

	lists := []types.List{}
	for rows.Next() {
		var l types.List
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.OwnerName, &l.Name, &l.Created, &l.Updated, &l.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan shared list: %w", err)
		}
		l.Default = isDefaultListName(l.Name)
		lists = append(lists, l)
	}
	return lists, rows.Err()
}
