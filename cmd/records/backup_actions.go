package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/kjk/records/backup"
	"github.com/kjk/records/cli"
	"github.com/kjk/records/log"
	"github.com/kjk/records/recordstore"
	"github.com/kjk/records/u"
)

const backupTimeout = 2 * time.Minute

type backupActions[T any] struct {
	store  *recordstore.Store[T]
	config *backup.Config
	// created on first use, New() talks to the server
	client *backup.Client
}

func (b *backupActions[T]) Actions() []cli.Action {
	return []cli.Action{
		{Name: "Backup", Run: b.Backup},
		{Name: "Restore", Run: b.Restore},
		{Name: "Delete backup", Run: b.Delete},
	}
}

func (b *backupActions[T]) getClient(ctx context.Context) (*backup.Client, error) {
	if b.client != nil {
		return b.client, nil
	}
	c, err := backup.New(ctx, b.config)
	if err != nil {
		return nil, err
	}
	b.client = c
	return c, nil
}

func (b *backupActions[T]) Backup(p *cli.Prompt) error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()
	c, err := b.getClient(ctx)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "records-backup")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	kind := b.store.Kind().Name
	local := filepath.Join(dir, kind+".json")
	if err = b.store.Export(local); err != nil {
		return err
	}

	timeStart := time.Now()
	remote := uniqueBackupName(kind, timeStart, func(name string) bool {
		return c.Exists(ctx, name)
	})
	info, err := c.Upload(ctx, remote, local)
	if err != nil {
		return err
	}
	log.EventWithDuration("backup", time.Since(timeStart), "kind", kind, "remote", info.Key, "size", info.Size)
	p.Printf("Backed up %d records as '%s' (%s).\n", b.store.Len(), info.Key, u.FormatSize(info.Size))
	return nil
}

// uniqueBackupName returns a name for a backup made at t. Names have
// a resolution of one second, later seconds are tried until exists
// returns false.
func uniqueBackupName(kind string, t time.Time, exists func(name string) bool) string {
	name := backup.Name(kind, t)
	for exists(name) {
		t = t.Add(time.Second)
		name = backup.Name(kind, t)
	}
	return name
}

// chooseBackup lists backups of the kind of records in the store and
// asks the user to pick one. Returns nil if there are no backups.
func (b *backupActions[T]) chooseBackup(ctx context.Context, p *cli.Prompt, c *backup.Client, label string) (*minio.ObjectInfo, error) {
	kind := b.store.Kind().Name
	objects, err := c.List(ctx, kind+"-")
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		p.Printf("No backups of %s records.\n", kind)
		return nil, nil
	}
	rows := make([][]string, 0, len(objects))
	for i, o := range objects {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			o.Key,
			o.LastModified.Local().Format("2006-01-02 15:04:05"),
			u.FormatSize(o.Size),
		})
	}
	p.Printf("%s\n", cli.RenderTable([]string{"#", "Backup", "Date", "Size"}, rows))
	idx, err := p.Position(label)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(objects) {
		return nil, &recordstore.IndexError{Index: idx, Len: len(objects)}
	}
	return &objects[idx], nil
}

func (b *backupActions[T]) Restore(p *cli.Prompt) error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()
	c, err := b.getClient(ctx)
	if err != nil {
		return err
	}
	obj, err := b.chooseBackup(ctx, p, c, "Number of the backup to restore: ")
	if err != nil || obj == nil {
		return err
	}
	ok, err := p.Confirm("This replaces all current records. Continue?")
	if err != nil || !ok {
		return err
	}

	kind := b.store.Kind().Name
	dir, err := os.MkdirTemp("", "records-restore")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	local := filepath.Join(dir, kind+".json")
	// object keys already include the prefix
	if err = c.Download(ctx, local, obj.Key); err != nil {
		return err
	}
	report, err := b.store.Import(local)
	if err != nil {
		return err
	}
	log.Event("restore", "kind", kind, "remote", obj.Key, "imported", report.Imported)
	cli.PrintImportReport(p, report)
	return nil
}

func (b *backupActions[T]) Delete(p *cli.Prompt) error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()
	c, err := b.getClient(ctx)
	if err != nil {
		return err
	}
	obj, err := b.chooseBackup(ctx, p, c, "Number of the backup to delete: ")
	if err != nil || obj == nil {
		return err
	}
	ok, err := p.Confirm("Delete '" + obj.Key + "'?")
	if err != nil || !ok {
		return err
	}
	if err = c.Remove(ctx, obj.Key); err != nil {
		return err
	}
	log.Event("backup_deleted", "kind", b.store.Kind().Name, "remote", obj.Key)
	p.Printf("Deleted '%s'.\n", obj.Key)
	return nil
}
